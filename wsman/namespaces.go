package wsman

// XML namespace URIs for the WS-Management protocol.
const (
	// NsSoap is the SOAP 1.2 envelope namespace.
	NsSoap = "http://www.w3.org/2003/05/soap-envelope"

	// NsAddressing is the WS-Addressing namespace.
	NsAddressing = "http://schemas.xmlsoap.org/ws/2004/08/addressing"

	// NsWsman is the DMTF WS-Management namespace.
	NsWsman = "http://schemas.dmtf.org/wbem/wsman/1/wsman.xsd"

	// NsWsmanMicrosoft is the Microsoft WS-Management namespace extension.
	NsWsmanMicrosoft = "http://schemas.microsoft.com/wbem/wsman/1/wsman.xsd"

	// NsShell is the Windows Remote Shell namespace.
	NsShell = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell"

	// NsTransfer is the WS-Transfer namespace.
	NsTransfer = "http://schemas.xmlsoap.org/ws/2004/09/transfer"
)

// WS-Addressing constants.
const (
	// AddressAnonymous is the WS-Addressing anonymous reply address.
	AddressAnonymous = "http://schemas.xmlsoap.org/ws/2004/08/addressing/role/anonymous"
)

// WSMan action URIs for WS-Transfer operations.
const (
	// ActionCreate creates a new resource (a WinRS shell).
	ActionCreate = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Create"

	// ActionDelete removes a resource (closes a WinRS shell).
	ActionDelete = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Delete"
)

// WSMan action URIs for Windows Remote Shell operations.
const (
	// ActionCommand starts a command within a shell.
	ActionCommand = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/Command"

	// ActionReceive retrieves command output.
	ActionReceive = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/Receive"

	// ActionSignal sends a control signal to a command.
	ActionSignal = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/Signal"
)

// Signal codes for the Signal action.
const (
	// SignalTerminate terminates a running command.
	SignalTerminate = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/signal/terminate"
)

// Resource URIs addressed by this client.
const (
	// ResourceURIWinRS is the resource URI for cmd.exe remote shells.
	ResourceURIWinRS = "http://schemas.microsoft.com/wbem/wsman/1/windows/shell/cmd"

	// ResourceURIStdRegProv is the resource URI of the WMI registry
	// provider class in the root\default namespace.
	ResourceURIStdRegProv = "http://schemas.microsoft.com/wbem/wsman/1/wmi/root/default/StdRegProv"
)

// MethodAction returns the custom-action URI for invoking a WMI class
// method, e.g. MethodAction(ResourceURIStdRegProv, "GetBinaryValue").
func MethodAction(resourceURI, method string) string {
	return resourceURI + "/" + method
}
