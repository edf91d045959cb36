package winrs

import (
	"context"
	"errors"
	"testing"

	"github.com/certops/chainresync/wsman"
)

// mockTransport implements Transport for testing.
type mockTransport struct {
	createFn  func(ctx context.Context, options map[string]string) (*wsman.EndpointReference, error)
	commandFn func(ctx context.Context, epr *wsman.EndpointReference, executable string, args []string) (string, error)
	receiveFn func(ctx context.Context, epr *wsman.EndpointReference, commandID string) (*wsman.ReceiveResult, error)
	signalFn  func(ctx context.Context, epr *wsman.EndpointReference, commandID, code string) error
	deleteFn  func(ctx context.Context, epr *wsman.EndpointReference) error

	deleteCalls int
}

func (m *mockTransport) CreateShell(ctx context.Context, options map[string]string) (*wsman.EndpointReference, error) {
	if m.createFn != nil {
		return m.createFn(ctx, options)
	}
	return &wsman.EndpointReference{
		ResourceURI: wsman.ResourceURIWinRS,
		Selectors:   []wsman.Selector{{Name: "ShellId", Value: "test-shell-id"}},
	}, nil
}

func (m *mockTransport) Command(ctx context.Context, epr *wsman.EndpointReference, executable string, args []string) (string, error) {
	if m.commandFn != nil {
		return m.commandFn(ctx, epr, executable, args)
	}
	return "test-command-id", nil
}

func (m *mockTransport) Receive(ctx context.Context, epr *wsman.EndpointReference, commandID string) (*wsman.ReceiveResult, error) {
	if m.receiveFn != nil {
		return m.receiveFn(ctx, epr, commandID)
	}
	return &wsman.ReceiveResult{
		Stdout:   []byte("test output\r\n"),
		ExitCode: 0,
		Done:     true,
	}, nil
}

func (m *mockTransport) Signal(ctx context.Context, epr *wsman.EndpointReference, commandID, code string) error {
	if m.signalFn != nil {
		return m.signalFn(ctx, epr, commandID, code)
	}
	return nil
}

func (m *mockTransport) DeleteShell(ctx context.Context, epr *wsman.EndpointReference) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, epr)
	}
	return nil
}

func TestNewShell(t *testing.T) {
	var gotOptions map[string]string
	mock := &mockTransport{
		createFn: func(_ context.Context, options map[string]string) (*wsman.EndpointReference, error) {
			gotOptions = options
			return &wsman.EndpointReference{
				Selectors: []wsman.Selector{{Name: "ShellId", Value: "shell-42"}},
			}, nil
		},
	}

	shell, err := NewShell(context.Background(), mock, WithNoProfile(), WithCodepage(65001))
	if err != nil {
		t.Fatalf("NewShell error: %v", err)
	}

	if shell.ID() != "shell-42" {
		t.Errorf("ID = %q", shell.ID())
	}
	if gotOptions["WINRS_NOPROFILE"] != "TRUE" {
		t.Errorf("WINRS_NOPROFILE = %q", gotOptions["WINRS_NOPROFILE"])
	}
	if gotOptions["WINRS_CODEPAGE"] != "65001" {
		t.Errorf("WINRS_CODEPAGE = %q", gotOptions["WINRS_CODEPAGE"])
	}
}

func TestNewShell_NilTransport(t *testing.T) {
	if _, err := NewShell(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil transport")
	}
}

func TestShell_Run(t *testing.T) {
	var gotExecutable string
	var gotArgs []string
	mock := &mockTransport{
		commandFn: func(_ context.Context, _ *wsman.EndpointReference, executable string, args []string) (string, error) {
			gotExecutable = executable
			gotArgs = args
			return "cmd-1", nil
		},
	}

	shell, err := NewShell(context.Background(), mock)
	if err != nil {
		t.Fatalf("NewShell error: %v", err)
	}

	proc, err := shell.Run(context.Background(), "reg.exe", "query", `HKLM\SOFTWARE`)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if gotExecutable != "reg.exe" {
		t.Errorf("executable = %q", gotExecutable)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "query" {
		t.Errorf("args = %v", gotArgs)
	}
	if string(proc.Stdout()) != "test output\r\n" {
		t.Errorf("Stdout = %q", proc.Stdout())
	}
	if proc.ExitCode() != 0 {
		t.Errorf("ExitCode = %d", proc.ExitCode())
	}
	if !proc.Done() {
		t.Error("Done = false after Run")
	}
}

func TestShell_Run_MultipleReceives(t *testing.T) {
	polls := 0
	mock := &mockTransport{
		receiveFn: func(_ context.Context, _ *wsman.EndpointReference, _ string) (*wsman.ReceiveResult, error) {
			polls++
			if polls < 3 {
				return &wsman.ReceiveResult{Stdout: []byte("chunk ")}, nil
			}
			return &wsman.ReceiveResult{Stdout: []byte("end"), ExitCode: 1, Done: true}, nil
		},
	}

	shell, err := NewShell(context.Background(), mock)
	if err != nil {
		t.Fatalf("NewShell error: %v", err)
	}

	proc, err := shell.Run(context.Background(), "reg.exe")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if string(proc.Stdout()) != "chunk chunk end" {
		t.Errorf("Stdout = %q", proc.Stdout())
	}
	if proc.ExitCode() != 1 {
		t.Errorf("ExitCode = %d", proc.ExitCode())
	}
}

func TestShell_Start_EmptyExecutable(t *testing.T) {
	shell, err := NewShell(context.Background(), &mockTransport{})
	if err != nil {
		t.Fatalf("NewShell error: %v", err)
	}
	if _, err := shell.Start(context.Background(), ""); !errors.Is(err, ErrInvalidExecutable) {
		t.Errorf("err = %v, want ErrInvalidExecutable", err)
	}
}

func TestShell_Close(t *testing.T) {
	mock := &mockTransport{}
	shell, err := NewShell(context.Background(), mock)
	if err != nil {
		t.Fatalf("NewShell error: %v", err)
	}

	if err := shell.Close(context.Background()); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	// Second close is a no-op
	if err := shell.Close(context.Background()); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if mock.deleteCalls != 1 {
		t.Errorf("DeleteShell called %d times, want 1", mock.deleteCalls)
	}

	if _, err := shell.Start(context.Background(), "reg.exe"); !errors.Is(err, ErrShellClosed) {
		t.Errorf("Start after Close: err = %v, want ErrShellClosed", err)
	}
}

func TestShell_Run_ReceiveError(t *testing.T) {
	signals := 0
	mock := &mockTransport{
		receiveFn: func(_ context.Context, _ *wsman.EndpointReference, _ string) (*wsman.ReceiveResult, error) {
			return nil, errors.New("connection lost")
		},
		signalFn: func(_ context.Context, _ *wsman.EndpointReference, _, code string) error {
			if code == wsman.SignalTerminate {
				signals++
			}
			return nil
		},
	}

	shell, err := NewShell(context.Background(), mock)
	if err != nil {
		t.Fatalf("NewShell error: %v", err)
	}

	if _, err := shell.Run(context.Background(), "reg.exe"); err == nil {
		t.Fatal("expected error from failed receive")
	}
	if signals != 1 {
		t.Errorf("terminate signaled %d times, want 1", signals)
	}
}
