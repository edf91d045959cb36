package chainreg

import "strings"

// Fixed registry target. The path and value name are constants of the
// certificate-chain engine, never parameterized; they are passed into each
// strategy from here so no strategy carries its own copy.
const (
	// KeyPath is the chain-engine configuration subkey under
	// HKEY_LOCAL_MACHINE, spelled exactly as the OS creates it,
	// trailing backslash included.
	KeyPath = `SOFTWARE\Microsoft\Cryptography\OID\EncodingType 0\CertDllCreateCertificateChainEngine\Config\`

	// ValueName is the REG_BINARY value holding the resync FILETIME.
	ValueName = "ChainCacheResyncFiletime"

	// HiveLocalMachine is the numeric HKEY_LOCAL_MACHINE constant used
	// when the hive is addressed through the WMI registry provider.
	HiveLocalMachine uint64 = 0x80000002 // 2147483650
)

// subKeyPath returns the key path without the trailing backslash, the form
// expected by registry handles and reg.exe.
func subKeyPath(keyPath string) string {
	return strings.TrimSuffix(keyPath, `\`)
}
