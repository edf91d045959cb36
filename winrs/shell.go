package winrs

import (
	"context"
	"fmt"
	"sync"

	"github.com/certops/chainresync/wsman"
)

// shellConfig holds the configuration for a Shell.
type shellConfig struct {
	codepage  int
	noProfile bool
}

// Option configures a Shell.
type Option func(*shellConfig)

// WithCodepage sets the console codepage.
// Common values: 437 (OEM/DOS), 65001 (UTF-8).
func WithCodepage(cp int) Option {
	return func(c *shellConfig) { c.codepage = cp }
}

// WithNoProfile prevents loading the user profile on shell creation.
func WithNoProfile() Option {
	return func(c *shellConfig) { c.noProfile = true }
}

// Shell represents a WinRS cmd.exe shell session on a remote host.
type Shell struct {
	transport Transport
	epr       *wsman.EndpointReference
	closed    bool
	mu        sync.Mutex
}

// NewShell creates a new WinRS shell on the remote system.
func NewShell(ctx context.Context, transport Transport, opts ...Option) (*Shell, error) {
	if transport == nil {
		return nil, fmt.Errorf("winrs: transport is nil")
	}

	var cfg shellConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	options := map[string]string{}
	if cfg.noProfile {
		options["WINRS_NOPROFILE"] = "TRUE"
	}
	if cfg.codepage > 0 {
		options["WINRS_CODEPAGE"] = fmt.Sprintf("%d", cfg.codepage)
	}

	epr, err := transport.CreateShell(ctx, options)
	if err != nil {
		return nil, fmt.Errorf("winrs: create shell: %w", err)
	}

	return &Shell{
		transport: transport,
		epr:       epr,
	}, nil
}

// ID returns the shell ID.
func (s *Shell) ID() string {
	return s.epr.ShellID()
}

// EPR returns the shell's endpoint reference for low-level operations.
func (s *Shell) EPR() *wsman.EndpointReference {
	return s.epr
}

// Close terminates the shell. Safe to call more than once.
func (s *Shell) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.transport.DeleteShell(ctx, s.epr); err != nil {
		return fmt.Errorf("winrs: close shell: %w", err)
	}
	return nil
}
