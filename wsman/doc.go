// Package wsman implements the WS-Management (WSMan) client operations used
// to reach the registry of a remote Windows host over WinRM.
//
// Two remote-access mechanisms ride on this package:
//
//   - Invoke: calls a method on a WMI provider class (the StdRegProv
//     registry provider) with typed input/output bodies.
//   - CreateShell/Command/Receive/Signal/DeleteShell: drives a Windows
//     Remote Shell (WinRS) session, used to run reg.exe remotely.
//
// # Subpackages
//
//   - auth: Authentication handlers (Basic, NTLM, Kerberos/Negotiate)
//   - transport: HTTP/TLS transport layer
package wsman
