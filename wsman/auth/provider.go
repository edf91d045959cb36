package auth

import "context"

// SecurityProvider handles the low-level authentication token exchange for
// Negotiate authentication.
//
// # Thread Safety
//
// SecurityProvider implementations are NOT safe for concurrent use. Each
// goroutine should use its own provider instance; the provider maintains
// internal state during the handshake.
//
// # Authentication Flow
//
//  1. Client calls Step(nil) -> returns initial token
//  2. Client sends token to server
//  3. Server responds with a challenge token
//  4. Client calls Step(challenge) -> returns response token
//  5. Repeat until Complete() returns true.
type SecurityProvider interface {
	// Step processes an input token (challenge) and produces an output
	// token (response). On the first call, inputToken should be nil.
	Step(ctx context.Context, inputToken []byte) (outputToken []byte, continueNeeded bool, err error)

	// Complete returns true if the security context has been established.
	Complete() bool

	// Close releases any resources associated with the context.
	Close() error
}
