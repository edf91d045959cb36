//go:build windows

package chainreg

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// directStrategy opens a handle to the target's HKEY_LOCAL_MACHINE hive
// via the remote registry service. Authentication is the ambient identity
// of the calling process; the Config credentials do not apply here.
type directStrategy struct{}

func newDirectStrategy() *directStrategy {
	return &directStrategy{}
}

// connect opens the remote HKLM hive. The caller must Close the key.
func (s *directStrategy) connect(host string) (registry.Key, error) {
	machine, err := windows.UTF16PtrFromString(`\\` + host)
	if err != nil {
		return 0, fmt.Errorf("machine name %q: %w", host, err)
	}

	var h windows.Handle
	if err := windows.RegConnectRegistry(machine, windows.HKEY_LOCAL_MACHINE, &h); err != nil {
		return 0, &TransportError{
			Kind: directKind(err),
			Host: host,
			Err:  fmt.Errorf("connect remote registry: %w", err),
		}
	}
	return registry.Key(h), nil
}

// directKind classifies a registry syscall error.
func directKind(err error) Kind {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case windows.ERROR_ACCESS_DENIED:
			return KindAccessDenied
		case windows.ERROR_BAD_NETPATH, windows.RPC_S_SERVER_UNAVAILABLE:
			return KindUnreachable
		}
	}
	return KindRemoteFault
}

// withContext runs a blocking registry operation while honoring ctx. The
// registry API has no cancellation; on timeout the call keeps running in
// its goroutine but the caller gets its deadline error.
func withContext(ctx context.Context, op func() error) error {
	done := make(chan error, 1)
	go func() { done <- op() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *directStrategy) ReadValue(ctx context.Context, host, keyPath, valueName string) ([]byte, error) {
	var data []byte
	err := withContext(ctx, func() error {
		root, err := s.connect(host)
		if err != nil {
			return err
		}
		defer root.Close()

		k, err := registry.OpenKey(root, subKeyPath(keyPath), registry.QUERY_VALUE)
		if errors.Is(err, registry.ErrNotExist) {
			return nil // key absent: value not set
		}
		if err != nil {
			return openError(host, "open", err)
		}
		defer k.Close()

		val, _, err := k.GetBinaryValue(valueName)
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		if err != nil {
			return openError(host, "read", err)
		}
		data = val
		return nil
	})
	return data, err
}

func (s *directStrategy) WriteValue(ctx context.Context, host, keyPath, valueName string, data []byte) error {
	return withContext(ctx, func() error {
		root, err := s.connect(host)
		if err != nil {
			return err
		}
		defer root.Close()

		k, _, err := registry.CreateKey(root, subKeyPath(keyPath), registry.SET_VALUE)
		if err != nil {
			return openError(host, "create", err)
		}
		defer k.Close()

		if err := k.SetBinaryValue(valueName, data); err != nil {
			return openError(host, "write", err)
		}
		return nil
	})
}

func (s *directStrategy) DeleteValue(ctx context.Context, host, keyPath, valueName string) error {
	return withContext(ctx, func() error {
		root, err := s.connect(host)
		if err != nil {
			return err
		}
		defer root.Close()

		k, err := registry.OpenKey(root, subKeyPath(keyPath), registry.SET_VALUE)
		if errors.Is(err, registry.ErrNotExist) {
			return nil // key absent: nothing to delete
		}
		if err != nil {
			return openError(host, "open", err)
		}
		defer k.Close()

		err = k.DeleteValue(valueName)
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		if err != nil {
			return openError(host, "delete", err)
		}
		return nil
	})
}

// openError classifies a per-key failure.
func openError(host, op string, err error) error {
	return &TransportError{
		Kind: directKind(err),
		Host: host,
		Err:  fmt.Errorf("%s %s: %w", op, ValueName, err),
	}
}
