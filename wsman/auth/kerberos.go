package auth

import (
	"context"
	"fmt"
	"os"

	"github.com/go-krb5/krb5/client"
	"github.com/go-krb5/krb5/config"
	"github.com/go-krb5/krb5/credentials"
	"github.com/go-krb5/krb5/keytab"
	"github.com/go-krb5/krb5/spnego"
)

// KerberosConfig holds the configuration for the Kerberos provider.
type KerberosConfig struct {
	// Realm is the Kerberos realm (e.g. EXAMPLE.COM).
	Realm string

	// Krb5ConfPath is the path to the krb5.conf file.
	// Defaults to $KRB5_CONFIG, then /etc/krb5.conf.
	Krb5ConfPath string

	// KeytabPath is the path to a keytab file (optional).
	KeytabPath string

	// CCachePath is the path to a credential cache (optional).
	CCachePath string

	// Credentials are used if KeytabPath/CCachePath are empty.
	Credentials *Credentials
}

// KerberosProvider implements SecurityProvider using the pure Go krb5
// library. Standard Kerberos-over-HTTP is a single-leg exchange; the
// provider generates one SPNEGO token and treats the context as
// established once the server accepts it.
type KerberosProvider struct {
	client     *client.Client
	spnego     *spnego.SPNEGO
	targetSPN  string
	isComplete bool
}

// NewKerberosProvider creates a Kerberos provider targeting the given SPN
// (e.g. "HTTP/server.domain.com").
func NewKerberosProvider(cfg KerberosConfig, targetSPN string) (*KerberosProvider, error) {
	if cfg.Krb5ConfPath == "" {
		cfg.Krb5ConfPath = os.Getenv("KRB5_CONFIG")
		if cfg.Krb5ConfPath == "" {
			cfg.Krb5ConfPath = "/etc/krb5.conf"
		}
	}
	conf, err := config.Load(cfg.Krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("load krb5.conf from %s: %w", cfg.Krb5ConfPath, err)
	}

	var cl *client.Client
	switch {
	case cfg.KeytabPath != "":
		kt, err := keytab.Load(cfg.KeytabPath)
		if err != nil {
			return nil, fmt.Errorf("load keytab from %s: %w", cfg.KeytabPath, err)
		}
		cl = client.NewWithKeytab(cfg.Credentials.Username, cfg.Realm, kt, conf, client.DisablePAFXFAST(true))
	case cfg.CCachePath != "":
		cc, err := credentials.LoadCCache(cfg.CCachePath)
		if err != nil {
			return nil, fmt.Errorf("load ccache from %s: %w", cfg.CCachePath, err)
		}
		cl, err = client.NewFromCCache(cc, conf, client.DisablePAFXFAST(true))
		if err != nil {
			return nil, fmt.Errorf("create client from ccache: %w", err)
		}
	case cfg.Credentials != nil:
		cl = client.NewWithPassword(cfg.Credentials.Username, cfg.Realm, cfg.Credentials.Password, conf, client.DisablePAFXFAST(true))
	default:
		return nil, fmt.Errorf("no credentials provided (keytab, ccache, or password required)")
	}

	return &KerberosProvider{
		client:    cl,
		targetSPN: targetSPN,
	}, nil
}

// Step performs a GSS-API/SPNEGO step.
func (p *KerberosProvider) Step(ctx context.Context, inputToken []byte) ([]byte, bool, error) {
	if err := p.client.Login(); err != nil {
		return nil, false, fmt.Errorf("kerberos login: %w", err)
	}

	if len(inputToken) > 0 {
		// Mutual-auth token from the server after our initial token; the
		// context is already established on our side.
		if !p.isComplete {
			return nil, false, fmt.Errorf("received server token before client authentication completed")
		}
		return nil, false, nil
	}

	if p.spnego == nil {
		p.spnego = spnego.SPNEGOClient(p.client, p.targetSPN)
	}

	tkn, err := p.spnego.InitSecContext()
	if err != nil {
		return nil, false, fmt.Errorf("init security context: %w", err)
	}
	token, err := tkn.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("marshal token: %w", err)
	}

	p.isComplete = true
	return token, false, nil
}

// Complete returns true if the context is established.
func (p *KerberosProvider) Complete() bool {
	return p.isComplete
}

// Close releases resources.
func (p *KerberosProvider) Close() error {
	p.client.Destroy()
	return nil
}
