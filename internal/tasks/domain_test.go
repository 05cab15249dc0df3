package tasks

import "testing"

func TestNextPreviousAtBoundaries(t *testing.T) {
	if next, ok := NextStatus(StatusTodo); !ok || next != StatusInProgress {
		t.Fatalf("NextStatus(todo) = %q, %v", next, ok)
	}
	if _, ok := NextStatus(StatusDone); ok {
		t.Fatal("NextStatus(done) should report no value")
	}
	if _, ok := PreviousStatus(StatusTodo); ok {
		t.Fatal("PreviousStatus(todo) should report no value")
	}
	if _, ok := NextStatus(Status("blocked")); ok {
		t.Fatal("NextStatus of unknown status should report no value")
	}
}

func TestNextPreviousRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusInProgress, StatusInReview, StatusDone} {
		prev, ok := PreviousStatus(s)
		if !ok {
			t.Fatalf("PreviousStatus(%q) missing", s)
		}
		next, ok := NextStatus(prev)
		if !ok || next != s {
			t.Fatalf("NextStatus(PreviousStatus(%q)) = %q, %v", s, next, ok)
		}
	}
}

func TestTransitionsAllowOnlySingleSteps(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusInProgress, StatusInReview, true},
		{StatusInProgress, StatusTodo, true},
		{StatusInReview, StatusInProgress, true},
		{StatusInReview, StatusDone, true},
		{StatusTodo, StatusDone, false},
		{StatusTodo, StatusInReview, false},
		{StatusDone, StatusInReview, false},
		{StatusDone, StatusTodo, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDoneIsTerminal(t *testing.T) {
	if !Transitions.Terminal(StatusDone) {
		t.Fatal("done should be terminal")
	}
}

func TestStatusWeightFallback(t *testing.T) {
	if StatusWeight(StatusDone) <= StatusWeight(StatusTodo) {
		t.Fatal("board weights should follow the chain order")
	}
	if StatusWeight(Status("bogus")) != 0 {
		t.Fatal("unknown statuses should get the sentinel weight")
	}
}
