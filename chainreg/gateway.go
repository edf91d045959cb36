package chainreg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/certops/chainresync/filetime"
	"github.com/certops/chainresync/wsman"
	"github.com/certops/chainresync/wsman/auth"
	"github.com/certops/chainresync/wsman/transport"
)

// AuthType specifies the authentication mechanism for the WSMan-based
// access methods. The direct method always uses the ambient identity of
// the calling process.
type AuthType int

const (
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic AuthType = iota
	// AuthNTLM uses NTLM authentication.
	AuthNTLM
	// AuthKerberos uses Kerberos via SPNEGO.
	AuthKerberos
)

// Config holds the connection configuration shared by all hosts a Gateway
// operates on. Credentials are passed here explicitly rather than assumed
// from a global identity.
type Config struct {
	// Port is the WinRM port (default: 5985 for HTTP, 5986 for HTTPS).
	Port int

	// UseTLS enables HTTPS transport.
	UseTLS bool

	// InsecureSkipVerify skips TLS certificate verification.
	// WARNING: Only use for testing.
	InsecureSkipVerify bool

	// Timeout bounds each remote call (default 60s).
	Timeout time.Duration

	// AuthType specifies the authentication type.
	AuthType AuthType

	// Credentials for the WSMan-based methods.
	Credentials auth.Credentials

	// Kerberos carries additional settings when AuthType is AuthKerberos.
	Kerberos *auth.KerberosConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:     5985,
		UseTLS:   false,
		Timeout:  60 * time.Second,
		AuthType: AuthNTLM,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.AuthType == AuthKerberos {
		return c.Credentials.ValidateForKerberos()
	}
	return c.Credentials.Validate()
}

// endpoint builds the WinRM endpoint URL for a host.
func (c *Config) endpoint(host string) string {
	scheme := "http"
	port := c.Port
	if c.UseTLS {
		scheme = "https"
		if port == 0 {
			port = 5986
		}
	}
	if port == 0 {
		port = 5985
	}
	return fmt.Sprintf("%s://%s:%d/wsman", scheme, host, port)
}

// dial creates a WSMan client for one host. Each call builds its own
// transport so per-host connections never outlive the operation.
func (c *Config) dial(host string) (*wsman.Client, error) {
	tr := transport.NewHTTPTransport(
		transport.WithTimeout(c.timeout()),
		transport.WithInsecureSkipVerify(c.InsecureSkipVerify),
	)

	var authenticator auth.Authenticator
	switch c.AuthType {
	case AuthNTLM:
		authenticator = auth.NewNTLMAuth(c.Credentials)
	case AuthKerberos:
		kcfg := auth.KerberosConfig{Credentials: &c.Credentials}
		if c.Kerberos != nil {
			kcfg = *c.Kerberos
			if kcfg.Credentials == nil {
				kcfg.Credentials = &c.Credentials
			}
		}
		provider, err := auth.NewKerberosProvider(kcfg, "HTTP/"+host)
		if err != nil {
			return nil, fmt.Errorf("kerberos provider: %w", err)
		}
		authenticator = auth.NewNegotiateAuth(provider)
	default:
		authenticator = auth.NewBasicAuth(c.Credentials)
	}

	tr.Client().Transport = authenticator.Transport(tr.Client().Transport)

	return wsman.NewClient(c.endpoint(host), tr), nil
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

// Gateway performs get/set/delete of the resync timestamp against remote
// hosts. It holds no per-host state: every call dials and releases its own
// connection, so a single Gateway may be shared across goroutines.
type Gateway struct {
	cfg        Config
	logger     *slog.Logger
	strategies map[AccessMethod]Strategy
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Gateway. Credentials are checked lazily: the direct method
// uses the ambient process identity and needs none.
func New(cfg Config, opts ...Option) (*Gateway, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid config: port %d out of range", cfg.Port)
	}
	g := &Gateway{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	g.strategies = map[AccessMethod]Strategy{
		MethodDirect:          newDirectStrategy(),
		MethodManagementQuery: newMgmtStrategy(&g.cfg),
		MethodRemoteExec:      newExecStrategy(&g.cfg),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// strategy returns the Strategy for a method.
func (g *Gateway) strategy(method AccessMethod) (Strategy, error) {
	s, ok := g.strategies[method]
	if !ok {
		return nil, fmt.Errorf("chainreg: unknown access method %v", method)
	}
	return s, nil
}

// guard applies the checks shared by every operation.
func (g *Gateway) guard(host string, method AccessMethod) (Strategy, error) {
	if isLocalTarget(host) {
		return nil, ErrLocalTarget
	}
	if method != MethodDirect {
		if err := g.cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return g.strategy(method)
}

// withDeadline applies the configured per-call timeout unless the caller
// already set an earlier one.
func (g *Gateway) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.cfg.timeout())
}

// Get reads the resync timestamp from host. The second return value is
// false when no value is configured; absence is not an error.
func (g *Gateway) Get(ctx context.Context, host string, method AccessMethod) (time.Time, bool, error) {
	s, err := g.guard(host, method)
	if err != nil {
		return time.Time{}, false, err
	}

	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	raw, err := s.ReadValue(ctx, host, KeyPath, ValueName)
	if err != nil {
		return time.Time{}, false, classifyTransport(host, err)
	}
	if raw == nil {
		g.logger.Debug("resync timestamp not set", "host", host, "method", method)
		return time.Time{}, false, nil
	}

	t, err := filetime.Decode(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %d byte(s) on %s: %w", ErrMalformed, len(raw), host, err)
	}
	g.logger.Debug("read resync timestamp", "host", host, "method", method, "timestamp", t)
	return t, true, nil
}

// Set writes t as the resync timestamp on host, creating the key and value
// if absent. Setting the same timestamp twice stores the same bytes.
func (g *Gateway) Set(ctx context.Context, host string, method AccessMethod, t time.Time) error {
	s, err := g.guard(host, method)
	if err != nil {
		return err
	}

	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	if err := s.WriteValue(ctx, host, KeyPath, ValueName, filetime.Encode(t)); err != nil {
		return classifyTransport(host, err)
	}
	g.logger.Info("set resync timestamp", "host", host, "method", method, "timestamp", t)
	return nil
}

// Delete removes the resync timestamp from host. Deleting an absent value
// succeeds: the observable state (no value) is the requested one.
func (g *Gateway) Delete(ctx context.Context, host string, method AccessMethod) error {
	s, err := g.guard(host, method)
	if err != nil {
		return err
	}

	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	if err := s.DeleteValue(ctx, host, KeyPath, ValueName); err != nil {
		return classifyTransport(host, err)
	}
	g.logger.Info("deleted resync timestamp", "host", host, "method", method)
	return nil
}
