package chainreg

import (
	"context"
	"sync"
	"time"
)

// Status reports how a single host fared within a batch.
type Status int

const (
	// StatusComplete means the operation finished on the host. For reads a
	// missing value still completes; the Outcome just carries no Timestamp.
	StatusComplete Status = iota

	// StatusFailed means the operation did not take effect on the host.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-host result of a batch operation.
type Outcome struct {
	Host      string
	Method    AccessMethod
	Status    Status
	Timestamp *time.Time // read result, nil when the value is not set
	Err       error      // set when Status is StatusFailed
}

// DefaultBatchConcurrency bounds simultaneous hosts when none is configured.
const DefaultBatchConcurrency = 8

// Batch applies one registry operation to many hosts. Hosts are independent:
// a failure on one never stops the others, and results come back in input
// order regardless of completion order.
type Batch struct {
	gw       *Gateway
	limit    int
	resolver HostResolver
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets how many hosts are worked on at once.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) { b.limit = n }
}

// WithResolver sets the host name resolver.
func WithResolver(r HostResolver) BatchOption {
	return func(b *Batch) { b.resolver = r }
}

// NewBatch wraps a Gateway for multi-host operations.
func NewBatch(gw *Gateway, opts ...BatchOption) *Batch {
	b := &Batch{
		gw:       gw,
		limit:    DefaultBatchConcurrency,
		resolver: identityResolver{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.limit < 1 {
		b.limit = 1
	}
	return b
}

// Get reads the resync timestamp from every host.
func (b *Batch) Get(ctx context.Context, hosts []string, method AccessMethod) []Outcome {
	return b.run(ctx, hosts, method, func(ctx context.Context, host string, out *Outcome) error {
		ts, ok, err := b.gw.Get(ctx, host, method)
		if err != nil {
			return err
		}
		if ok {
			out.Timestamp = &ts
		}
		return nil
	})
}

// Set writes the resync timestamp on every host.
func (b *Batch) Set(ctx context.Context, hosts []string, method AccessMethod, t time.Time) []Outcome {
	return b.run(ctx, hosts, method, func(ctx context.Context, host string, out *Outcome) error {
		if err := b.gw.Set(ctx, host, method, t); err != nil {
			return err
		}
		ts := t
		out.Timestamp = &ts
		return nil
	})
}

// Delete removes the resync timestamp from every host.
func (b *Batch) Delete(ctx context.Context, hosts []string, method AccessMethod) []Outcome {
	return b.run(ctx, hosts, method, func(ctx context.Context, host string, _ *Outcome) error {
		return b.gw.Delete(ctx, host, method)
	})
}

func (b *Batch) run(ctx context.Context, hosts []string, method AccessMethod, op func(context.Context, string, *Outcome) error) []Outcome {
	outcomes := make([]Outcome, len(hosts))
	sem := newHostSemaphore(b.limit)

	var wg sync.WaitGroup
	for i, host := range hosts {
		out := &outcomes[i]
		out.Host = host
		out.Method = method

		if err := sem.Acquire(ctx); err != nil {
			out.Status = StatusFailed
			out.Err = err
			continue
		}

		wg.Add(1)
		go func(host string, out *Outcome) {
			defer wg.Done()
			defer sem.Release()

			target, err := b.resolver.Resolve(ctx, host)
			if err == nil {
				err = op(ctx, target, out)
			}
			if err != nil {
				out.Status = StatusFailed
				out.Err = err
			}
		}(host, out)
	}
	wg.Wait()

	return outcomes
}
