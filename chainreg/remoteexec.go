package chainreg

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/certops/chainresync/winrs"
)

// execStrategy performs registry operations by running reg.exe in a WinRS
// shell on the target. The key path and value name travel as discrete
// command arguments, never spliced into a script.
type execStrategy struct {
	dial func(host string) (winrs.Transport, error)
}

func newExecStrategy(cfg *Config) *execStrategy {
	return &execStrategy{
		dial: func(host string) (winrs.Transport, error) {
			return cfg.dial(host)
		},
	}
}

// run opens a short-lived shell on host, executes reg.exe with args, and
// returns the finished process. The shell is released on every exit path.
func (s *execStrategy) run(ctx context.Context, host string, args ...string) (*winrs.Process, error) {
	tr, err := s.dial(host)
	if err != nil {
		return nil, err
	}

	shell, err := winrs.NewShell(ctx, tr, winrs.WithNoProfile())
	if err != nil {
		return nil, err
	}
	defer shell.Close(context.WithoutCancel(ctx))

	return shell.Run(ctx, "reg.exe", args...)
}

// hivePath renders the key path the way reg.exe addresses it.
func hivePath(keyPath string) string {
	return `HKLM\` + subKeyPath(keyPath)
}

// quoteArg wraps an argument in double quotes when cmd.exe would otherwise
// split it on spaces.
func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t") && !strings.HasPrefix(s, `"`) {
		return `"` + s + `"`
	}
	return s
}

// valueMissing recognizes the reg.exe diagnostic for an absent key or value.
func valueMissing(output string) bool {
	return strings.Contains(strings.ToLower(output), "unable to find the specified registry key or value")
}

func (s *execStrategy) ReadValue(ctx context.Context, host, keyPath, valueName string) ([]byte, error) {
	proc, err := s.run(ctx, host, "query", quoteArg(hivePath(keyPath)), "/v", valueName)
	if err != nil {
		return nil, err
	}

	combined := string(proc.Stdout()) + string(proc.Stderr())
	if proc.ExitCode() != 0 {
		if valueMissing(combined) {
			return nil, nil
		}
		return nil, fmt.Errorf("reg.exe query exited %d: %s", proc.ExitCode(), strings.TrimSpace(string(proc.Stderr())))
	}

	return parseRegQuery(string(proc.Stdout()), valueName)
}

// parseRegQuery extracts the REG_BINARY payload for valueName from
// reg.exe query output:
//
//	HKEY_LOCAL_MACHINE\SOFTWARE\...\Config
//	    ChainCacheResyncFiletime    REG_BINARY    0080DD88F1A8D801
func parseRegQuery(stdout, valueName string) ([]byte, error) {
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.EqualFold(fields[0], valueName) {
			continue
		}
		if fields[1] != "REG_BINARY" {
			return nil, fmt.Errorf("value %s has type %s, want REG_BINARY", valueName, fields[1])
		}
		data, err := hex.DecodeString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("value %s is not valid hex: %w", valueName, err)
		}
		return data, nil
	}
	// Exit 0 without the value line: nothing stored under that name
	return nil, nil
}

func (s *execStrategy) WriteValue(ctx context.Context, host, keyPath, valueName string, data []byte) error {
	proc, err := s.run(ctx, host,
		"add", quoteArg(hivePath(keyPath)),
		"/v", valueName,
		"/t", "REG_BINARY",
		"/d", strings.ToUpper(hex.EncodeToString(data)),
		"/f")
	if err != nil {
		return err
	}
	if proc.ExitCode() != 0 {
		return fmt.Errorf("reg.exe add exited %d: %s", proc.ExitCode(), strings.TrimSpace(string(proc.Stderr())))
	}
	return nil
}

func (s *execStrategy) DeleteValue(ctx context.Context, host, keyPath, valueName string) error {
	proc, err := s.run(ctx, host, "delete", quoteArg(hivePath(keyPath)), "/v", valueName, "/f")
	if err != nil {
		return err
	}
	if proc.ExitCode() != 0 {
		if valueMissing(string(proc.Stdout()) + string(proc.Stderr())) {
			return nil
		}
		return fmt.Errorf("reg.exe delete exited %d: %s", proc.ExitCode(), strings.TrimSpace(string(proc.Stderr())))
	}
	return nil
}
