package chainreg

import (
	"os"
	"strings"
)

// isLocalTarget reports whether host names the machine this process runs
// on. The direct method cannot open a remote handle to the local registry,
// and letting the other methods silently succeed would hide that asymmetry,
// so every method refuses local targets the same way.
func isLocalTarget(host string) bool {
	h := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	switch h {
	case "", ".", "localhost", "127.0.0.1", "::1":
		return true
	}

	name, err := os.Hostname()
	if err != nil {
		return false
	}
	name = strings.ToLower(name)
	if h == name {
		return true
	}
	// os.Hostname usually yields the short name; compare first labels so
	// the FQDN of this machine is also refused.
	return firstLabel(h) == firstLabel(name) && (strings.Contains(h, ".") || strings.Contains(name, "."))
}

func firstLabel(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}
