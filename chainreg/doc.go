// Package chainreg reads, writes, and deletes the certificate-chain-engine
// cache resync timestamp (ChainCacheResyncFiletime) in the registry of
// remote Windows hosts.
//
// The value tells the chain engine to discard cached revocation and chain
// data created before the stored FILETIME. This package addresses exactly
// that one key/value pair; it is not a general registry client.
//
// Three interchangeable access methods perform the same operation over
// different remote-access mechanisms:
//
//   - Direct: a remote HKEY_LOCAL_MACHINE handle (Windows clients only)
//   - ManagementQuery: StdRegProv WMI method calls over WSMan (default)
//   - RemoteExec: reg.exe in a WinRS shell over WSMan
//
// All three agree on the wire format via the filetime package, so a value
// written through one method reads back identically through another.
//
// The Gateway is stateless and reentrant: every call dials, operates, and
// releases its own connection, so hosts can be processed concurrently.
// Batch fans an operation out across hosts with bounded concurrency and
// returns one Outcome per host regardless of individual failures.
//
// Operations against the local machine are refused with ErrLocalTarget:
// the Direct method cannot open a remote handle to itself, and a silent
// fallback would produce misleading results.
package chainreg
