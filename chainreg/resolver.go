package chainreg

import "context"

// HostResolver maps the host names a caller supplies to the names used to
// reach the machines. Deployments with short names in inventory but FQDNs
// on the wire plug in their own implementation.
type HostResolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// identityResolver is the default: hosts are used exactly as given.
type identityResolver struct{}

func (identityResolver) Resolve(_ context.Context, host string) (string, error) {
	return host, nil
}
