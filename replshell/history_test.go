package replshell

import "testing"

func TestHistorySkipsEmptyAndImmediateRepeats(t *testing.T) {
	h := NewHistory(10)
	h.Add("")
	h.Add("load $0 #1")
	h.Add("load $0 #1")

	if h.Size() != 1 {
		t.Fatalf("expected 1 stored line, got %d", h.Size())
	}
}

func TestHistoryTrimsToMaxSize(t *testing.T) {
	h := NewHistory(3)
	h.Add("a")
	h.Add("b")
	h.Add("c")
	h.Add("d")

	all := h.All()
	if len(all) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(all))
	}
	if all[0] != "b" {
		t.Errorf("expected oldest surviving line to be %q, got %q", "b", all[0])
	}
}

func TestHistoryNextPastEndReturnsEmpty(t *testing.T) {
	h := NewHistory(10)
	h.Add("a")
	h.Add("b")

	h.Previous()
	h.Previous()
	if got := h.Next(); got != "b" {
		t.Errorf("expected Next to return %q, got %q", "b", got)
	}
	if got := h.Next(); got != "" {
		t.Errorf("expected Next past the end to return empty, got %q", got)
	}
}

func TestHistoryDefaultsMaxSizeWhenNonPositive(t *testing.T) {
	h := NewHistory(0)
	if h.maxSize != 1000 {
		t.Errorf("expected default maxSize 1000, got %d", h.maxSize)
	}
}

func TestHistoryPreviousOnEmptyReturnsEmpty(t *testing.T) {
	h := NewHistory(10)
	if got := h.Previous(); got != "" {
		t.Errorf("expected Previous on an empty history to return empty, got %q", got)
	}
}
