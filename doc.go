// Package chainresync manages the certificate chain cache resync timestamp
// on remote Windows hosts. The value is an 8-byte FILETIME stored under
// HKEY_LOCAL_MACHINE; writing it tells CryptoAPI to rebuild its chain cache
// at the given moment, and removing it cancels a scheduled resync.
//
// # Architecture
//
// The module is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  chainreg/     Gateway, access strategies, batching     │
//	├─────────────────────────────────────────────────────────┤
//	│  winrs/        Remote shell (reg.exe fallback)          │
//	├─────────────────────────────────────────────────────────┤
//	│  wsman/        WSMan/WinRM transport layer              │
//	├─────────────────────────────────────────────────────────┤
//	│  filetime/     FILETIME wire codec                      │
//	└─────────────────────────────────────────────────────────┘
//
// Three interchangeable access methods reach the registry: a direct remote
// registry handle (Windows only), WMI StdRegProv method invocation over
// WSMan, and reg.exe executed in a WinRS shell.
//
// # Quick Start
//
//	cfg := chainreg.DefaultConfig()
//	cfg.Credentials = auth.Credentials{Username: "admin", Password: "secret"}
//	gw, err := chainreg.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ts, ok, err := gw.Get(ctx, "web01", chainreg.MethodManagementQuery)
package chainresync
