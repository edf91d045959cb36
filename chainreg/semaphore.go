package chainreg

import "context"

// hostSemaphore bounds how many hosts a batch works on at once. It queues
// the rest client-side so a large host list does not open a connection per
// host simultaneously.
type hostSemaphore struct {
	sem chan struct{}
}

func newHostSemaphore(limit int) *hostSemaphore {
	if limit < 1 {
		limit = 1
	}
	return &hostSemaphore{sem: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is available or ctx is done.
func (hs *hostSemaphore) Acquire(ctx context.Context) error {
	select {
	case hs.sem <- struct{}{}:
		return nil
	default:
	}

	select {
	case hs.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. It must only be called after a successful Acquire.
func (hs *hostSemaphore) Release() {
	select {
	case <-hs.sem:
	default:
	}
}

// Active reports how many slots are currently held.
func (hs *hostSemaphore) Active() int {
	return len(hs.sem)
}
