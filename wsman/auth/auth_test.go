package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
)

// recordingTripper captures the request it receives.
type recordingTripper struct {
	req *http.Request
}

func (r *recordingTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r.req = req
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestBasicAuth_Header(t *testing.T) {
	rec := &recordingTripper{}
	tr := NewBasicAuth(Credentials{Username: "admin", Password: "secret", Domain: "CORP"}).Transport(rec)

	req, _ := http.NewRequest(http.MethodPost, "https://server:5986/wsman", nil)
	if _, err := tr.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	got := rec.req.Header.Get("Authorization")
	if !strings.HasPrefix(got, "Basic ") {
		t.Fatalf("Authorization = %q", got)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, "Basic "))
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if string(decoded) != `CORP\admin:secret` {
		t.Errorf("token = %q", decoded)
	}

	// The original request must stay untouched
	if req.Header.Get("Authorization") != "" {
		t.Error("original request was mutated")
	}
}

func TestBasicAuth_NoDomain(t *testing.T) {
	rec := &recordingTripper{}
	tr := NewBasicAuth(Credentials{Username: "admin", Password: "secret"}).Transport(rec)

	req, _ := http.NewRequest(http.MethodPost, "https://server:5986/wsman", nil)
	if _, err := tr.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	decoded, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(rec.req.Header.Get("Authorization"), "Basic "))
	if string(decoded) != "admin:secret" {
		t.Errorf("token = %q", decoded)
	}
}

func TestCredentials_Validate(t *testing.T) {
	c := Credentials{}
	if err := c.Validate(); err == nil {
		t.Error("empty credentials passed validation")
	}

	c.Username = "admin"
	if err := c.Validate(); err == nil {
		t.Error("missing password passed validation")
	}
	if err := c.ValidateForKerberos(); err != nil {
		t.Errorf("kerberos validation requires only a username: %v", err)
	}

	c.Password = "secret"
	if err := c.Validate(); err != nil {
		t.Errorf("complete credentials failed validation: %v", err)
	}
}

func TestAuthenticator_Names(t *testing.T) {
	if got := NewBasicAuth(Credentials{}).Name(); got != "Basic" {
		t.Errorf("Basic Name = %q", got)
	}
	if got := NewNTLMAuth(Credentials{}).Name(); got != "NTLM" {
		t.Errorf("NTLM Name = %q", got)
	}
}
