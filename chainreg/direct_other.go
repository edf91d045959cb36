//go:build !windows

package chainreg

import "context"

// directStrategy is only available on Windows, where the remote registry
// API exists. Elsewhere every call reports ErrDirectUnsupported so callers
// can fall back to ManagementQuery or RemoteExec.
type directStrategy struct{}

func newDirectStrategy() *directStrategy {
	return &directStrategy{}
}

func (s *directStrategy) ReadValue(ctx context.Context, host, keyPath, valueName string) ([]byte, error) {
	return nil, ErrDirectUnsupported
}

func (s *directStrategy) WriteValue(ctx context.Context, host, keyPath, valueName string, data []byte) error {
	return ErrDirectUnsupported
}

func (s *directStrategy) DeleteValue(ctx context.Context, host, keyPath, valueName string) error {
	return ErrDirectUnsupported
}
