package reminder

import "testing"

func TestCancelTokenIsIdempotent(t *testing.T) {
	t.Parallel()

	tok := NewCancelToken()
	if tok.Cancelled() {
		t.Fatal("new token reports cancelled")
	}
	tok.Cancel()
	tok.Cancel()
	if !tok.Cancelled() {
		t.Fatal("Cancelled() = false after Cancel")
	}
	select {
	case <-tok.Done():
	default:
		t.Fatal("Done() not closed after Cancel")
	}
}

func TestNilCancelTokenNeverCancels(t *testing.T) {
	t.Parallel()

	var tok *CancelToken
	tok.Cancel()
	if tok.Cancelled() {
		t.Fatal("nil token reports cancelled")
	}
	if tok.Done() != nil {
		t.Fatal("nil token Done() must be nil")
	}
}

func TestBatchResultAborted(t *testing.T) {
	t.Parallel()

	cases := map[BatchState]bool{
		StateCompleted:    false,
		StateCancelled:    true,
		StateAbortedFatal: true,
	}
	for state, want := range cases {
		if got := (BatchResult{State: state}).Aborted(); got != want {
			t.Fatalf("Aborted() for %s = %v, want %v", state, got, want)
		}
	}
	r := BatchResult{Total: 5, Succeeded: 2, Failed: 1}
	if r.Skipped() != 2 {
		t.Fatalf("Skipped() = %d, want 2", r.Skipped())
	}
}
