package auth

import (
	"net/http"

	"github.com/Azure/go-ntlmssp"
)

// NTLMAuth implements NTLM authentication.
type NTLMAuth struct {
	creds Credentials
}

// NewNTLMAuth creates a new NTLM authentication handler.
func NewNTLMAuth(creds Credentials) *NTLMAuth {
	return &NTLMAuth{creds: creds}
}

// Name returns the authentication scheme name.
func (a *NTLMAuth) Name() string {
	return "NTLM"
}

// Transport wraps an http.RoundTripper with NTLM authentication.
// Uses github.com/Azure/go-ntlmssp for the NTLM handshake.
func (a *NTLMAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &ntlmTransport{
		negotiator: ntlmssp.Negotiator{RoundTripper: base},
		creds:      a.creds,
	}
}

// ntlmTransport injects the credentials as Basic auth for the negotiator
// to pick up, then lets go-ntlmssp drive the three-leg handshake.
type ntlmTransport struct {
	negotiator ntlmssp.Negotiator
	creds      Credentials
}

// RoundTrip implements http.RoundTripper.
func (t *ntlmTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	user := t.creds.Username
	if t.creds.Domain != "" {
		user = t.creds.Domain + "\\" + user
	}
	reqCopy.SetBasicAuth(user, t.creds.Password)

	return t.negotiator.RoundTrip(reqCopy)
}
