package chainreg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/certops/chainresync/wsman"
	"github.com/certops/chainresync/wsman/transport"
)

// Sentinel errors.
var (
	// ErrMalformed indicates the stored registry bytes exist but do not
	// decode as a FILETIME value. This is a data-integrity problem, not
	// a transport failure.
	ErrMalformed = errors.New("chainreg: stored value is not a valid timestamp")

	// ErrLocalTarget indicates the target host resolves to the local
	// machine, which is refused for every access method.
	ErrLocalTarget = errors.New("chainreg: target is the local machine; remote access methods cannot operate on it")

	// ErrDirectUnsupported indicates the direct access method was
	// requested on a non-Windows client.
	ErrDirectUnsupported = errors.New("chainreg: direct registry access requires a windows client")
)

// Kind classifies a transport failure for automated branching.
type Kind int

const (
	// KindUnreachable: the host could not be contacted.
	KindUnreachable Kind = iota + 1

	// KindAccessDenied: the host refused the caller's credentials or
	// the key's ACL denied the operation.
	KindAccessDenied

	// KindTimeout: the call exceeded its deadline or was cancelled.
	KindTimeout

	// KindRemoteFault: the host answered with a protocol-level fault.
	KindRemoteFault
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindAccessDenied:
		return "access denied"
	case KindTimeout:
		return "timeout"
	case KindRemoteFault:
		return "remote fault"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TransportError wraps a transport-level failure with a stable
// classification and the host it occurred against.
type TransportError struct {
	Kind Kind
	Host string
	Err  error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("chainreg: %s: %s", e.Host, e.Kind)
	}
	return fmt.Sprintf("chainreg: %s: %s: %v", e.Host, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a TransportError of the given kind.
func IsKind(err error, kind Kind) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == kind
}

// classifyTransport maps an arbitrary failure from a strategy to a
// TransportError. Errors that already carry a classification pass through
// unchanged.
func classifyTransport(host string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}

	return &TransportError{
		Kind: transportKind(err),
		Host: host,
		Err:  err,
	}
}

// transportKind derives the failure classification from the error chain.
func transportKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		return KindAccessDenied
	}

	var fault *wsman.Fault
	if errors.As(err, &fault) {
		switch {
		case fault.IsAccessDenied():
			return KindAccessDenied
		case fault.IsTimeout():
			return KindTimeout
		default:
			return KindRemoteFault
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnreachable
	}

	// Fallback: string matching for stdlib network errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no route to host"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"):
		return KindUnreachable
	case strings.Contains(msg, "access denied"),
		strings.Contains(msg, "unauthorized"):
		return KindAccessDenied
	}

	return KindRemoteFault
}
