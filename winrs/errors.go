package winrs

import "errors"

// Sentinel errors for WinRS operations.
var (
	// ErrShellClosed indicates the shell has already been closed.
	ErrShellClosed = errors.New("winrs: shell is closed")

	// ErrInvalidExecutable indicates the executable path is invalid.
	ErrInvalidExecutable = errors.New("winrs: invalid executable")
)
