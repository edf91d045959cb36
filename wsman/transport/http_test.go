package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPTransport_Post(t *testing.T) {
	var gotContentType string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte("<s:Envelope><s:Body/></s:Envelope>"))
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Post(context.Background(), server.URL, []byte("<request/>"))
	if err != nil {
		t.Fatalf("Post error: %v", err)
	}

	if !strings.Contains(string(resp), "Envelope") {
		t.Errorf("response = %q", resp)
	}
	if gotContentType != ContentTypeSOAP {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody != "<request/>" {
		t.Errorf("request body = %q", gotBody)
	}
}

func TestHTTPTransport_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	_, err := tr.Post(context.Background(), server.URL, []byte("<request/>"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

// WinRM delivers SOAP faults with HTTP 500; the body must come back for
// fault parsing instead of being swallowed by a status check.
func TestHTTPTransport_FaultBodyOn500(t *testing.T) {
	fault := `<s:Envelope><s:Body><s:Fault><s:Code><s:Value>s:Sender</s:Value></s:Code></s:Fault></s:Body></s:Envelope>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fault))
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Post(context.Background(), server.URL, []byte("<request/>"))
	if err != nil {
		t.Fatalf("Post error: %v", err)
	}
	if string(resp) != fault {
		t.Errorf("response = %q", resp)
	}
}

func TestHTTPTransport_ErrorStatusWithoutFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	_, err := tr.Post(context.Background(), server.URL, []byte("<request/>"))
	if err == nil {
		t.Fatal("expected error for HTTP 502 without fault body")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v", err)
	}
}
