package winrs

import (
	"context"
	"fmt"
	"sync"

	"github.com/certops/chainresync/wsman"
)

// Process represents a command running in a WinRS shell.
type Process struct {
	shell     *Shell
	commandID string
	stdout    []byte
	stderr    []byte
	exitCode  int
	done      bool
	mu        sync.Mutex
}

// Run executes a command and waits for completion. Each argument is
// delivered to the server as a separate protocol element; arguments that
// need cmd.exe quoting must arrive pre-quoted.
func (s *Shell) Run(ctx context.Context, executable string, args ...string) (*Process, error) {
	proc, err := s.Start(ctx, executable, args...)
	if err != nil {
		return nil, err
	}

	if err := proc.Wait(ctx); err != nil {
		// Best effort: stop the remote command so the shell can be reused
		_ = proc.Signal(context.WithoutCancel(ctx), wsman.SignalTerminate)
		return nil, err
	}

	return proc, nil
}

// Start executes a command without waiting for completion.
// Use Wait() to block until the process finishes.
func (s *Shell) Start(ctx context.Context, executable string, args ...string) (*Process, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrShellClosed
	}
	s.mu.Unlock()

	if executable == "" {
		return nil, ErrInvalidExecutable
	}

	commandID, err := s.transport.Command(ctx, s.epr, executable, args)
	if err != nil {
		return nil, fmt.Errorf("winrs: start command: %w", err)
	}

	return &Process{
		shell:     s,
		commandID: commandID,
	}, nil
}

// Wait blocks until the process completes.
func (p *Process) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	for {
		result, err := p.shell.transport.Receive(ctx, p.shell.epr, p.commandID)
		if err != nil {
			return fmt.Errorf("winrs: receive output: %w", err)
		}

		p.mu.Lock()
		p.stdout = append(p.stdout, result.Stdout...)
		p.stderr = append(p.stderr, result.Stderr...)
		p.exitCode = result.ExitCode

		if result.Done {
			p.done = true
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Signal sends a control signal to the process (wsman.SignalTerminate).
func (p *Process) Signal(ctx context.Context, code string) error {
	if err := p.shell.transport.Signal(ctx, p.shell.epr, p.commandID, code); err != nil {
		return fmt.Errorf("winrs: signal: %w", err)
	}
	return nil
}

// CommandID returns the command ID.
func (p *Process) CommandID() string {
	return p.commandID
}

// Done returns true if the process has completed.
func (p *Process) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stdout returns the captured standard output. Safe to call after Wait() completes.
func (p *Process) Stdout() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout
}

// Stderr returns the captured standard error. Safe to call after Wait() completes.
func (p *Process) Stderr() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stderr
}

// ExitCode returns the process exit code. Safe to call after Wait() completes.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}
