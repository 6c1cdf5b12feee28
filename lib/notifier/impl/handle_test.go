package impl

import "testing"

func Test_handle_trySend(t *testing.T) {
	h := NewHandle("x", 2)

	if ok := h.TrySend("one"); !ok {
		t.Error("TrySend() #1 = false, want true")
	}
	if ok := h.TrySend("two"); !ok {
		t.Error("TrySend() #2 = false, want true")
	}
	// queue full, must drop instead of block
	if ok := h.TrySend("three"); ok {
		t.Error("TrySend() on full queue = true, want false")
	}

	if got := <-h.Listen(); got != "one" {
		t.Errorf("Listen() = %v, want one", got)
	}
}

func Test_handle_trySendAfterClose(t *testing.T) {
	h := NewHandle("x", 2)
	h.Close()

	if ok := h.TrySend("msg"); ok {
		t.Error("TrySend() after Close = true, want false")
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done() not closed after Close")
	}
}

func Test_handle_closeIsIdempotent(t *testing.T) {
	h := NewHandle("x", 2)
	h.Close()
	h.Close() // must not panic
}
