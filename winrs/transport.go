package winrs

import (
	"context"

	"github.com/certops/chainresync/wsman"
)

// Transport abstracts WSMan operations for WinRS shells.
// This interface enables testing with mock implementations.
type Transport interface {
	// CreateShell creates a new shell and returns its endpoint reference.
	CreateShell(ctx context.Context, options map[string]string) (*wsman.EndpointReference, error)

	// Command starts a command in the shell and returns the command ID.
	Command(ctx context.Context, epr *wsman.EndpointReference, executable string, args []string) (string, error)

	// Receive retrieves output from a command.
	Receive(ctx context.Context, epr *wsman.EndpointReference, commandID string) (*wsman.ReceiveResult, error)

	// Signal sends a signal to a command.
	Signal(ctx context.Context, epr *wsman.EndpointReference, commandID, code string) error

	// DeleteShell closes a shell.
	DeleteShell(ctx context.Context, epr *wsman.EndpointReference) error
}

// Ensure *wsman.Client implements Transport.
var _ Transport = (*wsman.Client)(nil)
