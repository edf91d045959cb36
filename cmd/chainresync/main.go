// Command chainresync reads, sets, or clears the certificate chain cache
// resync timestamp on remote Windows hosts.
//
// Password can be provided via:
//   - -pass flag (least secure, visible in process list)
//   - CHAINRESYNC_PASSWORD environment variable (recommended)
//   - stdin prompt (if neither flag nor env var is set)
//
// Usage:
//
//	chainresync -hosts <host,...> -user <username> <get|set|delete>
//
// Examples:
//
//	# Read the timestamp from two hosts
//	export CHAINRESYNC_PASSWORD='secret'
//	chainresync -hosts web01,web02 -user admin get
//
//	# Force a resync at a specific moment
//	chainresync -hosts web01 -user admin -when 2026-09-01T03:00:00Z set
//
//	# Clear the value via the reg.exe fallback
//	chainresync -hosts web01 -user admin -method exec delete
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/certops/chainresync/chainreg"
	"github.com/certops/chainresync/internal/log"
	"github.com/certops/chainresync/wsman/auth"
)

const passwordEnv = "CHAINRESYNC_PASSWORD"

func main() {
	hosts := flag.String("hosts", "", "Comma-separated target hostnames")
	methodName := flag.String("method", "", "Access method: mgmt (default), direct, exec")
	username := flag.String("user", "", "Username for authentication")
	password := flag.String("pass", "", "Password (use "+passwordEnv+" env var instead)")
	domain := flag.String("domain", "", "NT domain for authentication")
	when := flag.String("when", "now", "Timestamp to set, RFC 3339 or 'now'")
	useTLS := flag.Bool("tls", false, "Use HTTPS (port 5986)")
	port := flag.Int("port", 0, "WinRM port (default: 5985 for HTTP, 5986 for HTTPS)")
	insecure := flag.Bool("insecure", false, "Skip TLS certificate verification")
	timeout := flag.Duration("timeout", 60*time.Second, "Per-host operation timeout")
	concurrency := flag.Int("concurrency", chainreg.DefaultBatchConcurrency, "Hosts worked on at once")
	useBasic := flag.Bool("basic", false, "Use Basic authentication instead of NTLM")
	useKerberos := flag.Bool("kerberos", false, "Use Kerberos authentication")
	realm := flag.String("realm", "", "Kerberos realm (e.g. EXAMPLE.COM)")
	krb5Conf := flag.String("krb5conf", "", "Path to krb5.conf file")
	keytab := flag.String("keytab", "", "Path to Kerberos keytab file")
	ccache := flag.String("ccache", "", "Path to Kerberos credential cache")
	logLevel := flag.String("loglevel", "", "Log level: debug, info, warn, error (empty = no logging)")
	logFile := flag.String("logfile", "", "Write logs to this file (rotated at 10 MB) instead of stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one command required: get, set, or delete")
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	switch command {
	case "get", "set", "delete":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q (want get, set, or delete)\n", command)
		os.Exit(2)
	}

	targets := splitHosts(*hosts)
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -hosts is required")
		flag.Usage()
		os.Exit(2)
	}

	method, err := chainreg.ParseAccessMethod(*methodName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := buildLogger(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg := chainreg.DefaultConfig()
	cfg.UseTLS = *useTLS
	cfg.InsecureSkipVerify = *insecure
	cfg.Timeout = *timeout
	if *port != 0 {
		cfg.Port = *port
	} else if *useTLS {
		cfg.Port = 5986
	}

	// Direct uses the caller's Windows identity; the others need credentials.
	if method != chainreg.MethodDirect {
		if *username == "" {
			fmt.Fprintln(os.Stderr, "Error: -user is required")
			os.Exit(2)
		}
		pass := getPassword(*password)
		if pass == "" {
			fmt.Fprintln(os.Stderr, "Error: password is required (use -pass, "+passwordEnv+" env, or stdin)")
			os.Exit(2)
		}
		cfg.Credentials = auth.Credentials{
			Username: *username,
			Password: pass,
			Domain:   *domain,
		}
	}

	switch {
	case *useKerberos:
		cfg.AuthType = chainreg.AuthKerberos
		cfg.Kerberos = &auth.KerberosConfig{
			Realm:        *realm,
			Krb5ConfPath: *krb5Conf,
			KeytabPath:   *keytab,
			CCachePath:   *ccache,
		}
	case *useBasic:
		cfg.AuthType = chainreg.AuthBasic
	}

	var setAt time.Time
	if command == "set" {
		setAt, err = parseWhen(*when)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	}

	gw, err := chainreg.New(cfg, chainreg.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	batch := chainreg.NewBatch(gw, chainreg.WithConcurrency(*concurrency))

	ctx := context.Background()
	var outcomes []chainreg.Outcome
	switch command {
	case "get":
		outcomes = batch.Get(ctx, targets, method)
	case "set":
		outcomes = batch.Set(ctx, targets, method, setAt)
	case "delete":
		outcomes = batch.Delete(ctx, targets, method)
	}

	failed := 0
	for _, out := range outcomes {
		fmt.Println(formatOutcome(command, out))
		if out.Status == chainreg.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d host(s) failed\n", failed, len(outcomes))
		os.Exit(1)
	}
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func parseWhen(s string) (time.Time, error) {
	if s == "" || s == "now" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -when %q: %w", s, err)
	}
	return t.UTC(), nil
}

func formatOutcome(command string, out chainreg.Outcome) string {
	if out.Status == chainreg.StatusFailed {
		return fmt.Sprintf("%s: error: %v", out.Host, out.Err)
	}
	switch command {
	case "get":
		if out.Timestamp == nil {
			return fmt.Sprintf("%s: not set", out.Host)
		}
		return fmt.Sprintf("%s: %s", out.Host, out.Timestamp.Format(time.RFC3339Nano))
	case "set":
		return fmt.Sprintf("%s: set to %s", out.Host, out.Timestamp.Format(time.RFC3339Nano))
	default:
		return fmt.Sprintf("%s: deleted", out.Host)
	}
}

// buildLogger returns a redacting slog logger, or a discard logger when no
// level is requested. The returned func closes the log file, if any.
func buildLogger(levelName, path string) (*slog.Logger, func(), error) {
	noop := func() {}
	if levelName == "" {
		return slog.New(slog.DiscardHandler), noop, nil
	}

	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("invalid log level %q (want debug, info, warn, error)", levelName)
	}

	var w io.Writer = os.Stderr
	closeLog := noop
	if path != "" {
		rf, err := log.NewRotatingFile(path, 10<<20, 3)
		if err != nil {
			return nil, nil, err
		}
		w = rf
		closeLog = func() { _ = rf.Close() }
	}

	handler := log.NewRedactingHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return slog.New(handler), closeLog, nil
}

// getPassword returns the password from flag, env var, or a prompt.
func getPassword(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPass := os.Getenv(passwordEnv); envPass != "" {
		return envPass
	}

	fmt.Fprint(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		passBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return ""
		}
		return string(passBytes)
	}

	// Piped input: read a single line.
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
