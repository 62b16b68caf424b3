package reminder

import "sync"

// CancelToken is a cooperative stop signal for a running batch. The dispatcher
// observes it between targets, never during a gateway request.
// A nil *CancelToken is never cancelled.
type CancelToken struct {
	once sync.Once
	done chan struct{}
}

func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel requests a stop. Safe to call more than once and from any goroutine.
func (t *CancelToken) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.done) })
}

func (t *CancelToken) Cancelled() bool {
	if t == nil {
		return false
	}
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed on Cancel. For a nil token it returns nil,
// which blocks forever in a select.
func (t *CancelToken) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}
