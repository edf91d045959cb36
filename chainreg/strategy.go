package chainreg

import "context"

// Strategy is one remote-access mechanism for the registry value. All
// three implementations are interchangeable: the operation semantics are
// identical, only the transport differs.
//
// ReadValue returns (nil, nil) when the value (or its key) does not exist;
// absence is a legitimate state, never an error. DeleteValue is idempotent
// and succeeds when the value is already gone.
type Strategy interface {
	ReadValue(ctx context.Context, host, keyPath, valueName string) ([]byte, error)
	WriteValue(ctx context.Context, host, keyPath, valueName string, data []byte) error
	DeleteValue(ctx context.Context, host, keyPath, valueName string) error
}
