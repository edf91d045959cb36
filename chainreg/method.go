package chainreg

import "fmt"

// AccessMethod selects which remote-access mechanism executes an operation.
// It is orthogonal to the operation itself: the same bytes go to the same
// place whatever the method.
type AccessMethod int

const (
	// MethodManagementQuery calls the StdRegProv WMI registry provider
	// over WSMan. This is the default.
	MethodManagementQuery AccessMethod = iota

	// MethodDirect opens a remote HKEY_LOCAL_MACHINE handle. Only
	// available when the calling process runs on Windows.
	MethodDirect

	// MethodRemoteExec runs reg.exe in a WinRS shell on the target.
	MethodRemoteExec
)

// DefaultMethod is the access method used when the caller does not pick one.
const DefaultMethod = MethodManagementQuery

// String implements fmt.Stringer.
func (m AccessMethod) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodManagementQuery:
		return "mgmt"
	case MethodRemoteExec:
		return "exec"
	default:
		return fmt.Sprintf("AccessMethod(%d)", int(m))
	}
}

// ParseAccessMethod maps a method name (as accepted on the command line)
// to an AccessMethod.
func ParseAccessMethod(s string) (AccessMethod, error) {
	switch s {
	case "direct":
		return MethodDirect, nil
	case "mgmt", "":
		return MethodManagementQuery, nil
	case "exec":
		return MethodRemoteExec, nil
	default:
		return 0, fmt.Errorf("unknown access method %q (want direct, mgmt, or exec)", s)
	}
}
