package users

import "testing"

func TestAccountTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusArchived, true},
		{StatusPending, StatusSuspended, false},
		{StatusActive, StatusSuspended, true},
		{StatusActive, StatusInactive, true},
		{StatusSuspended, StatusActive, true},
		{StatusInactive, StatusActive, true},
		{StatusArchived, StatusActive, false},
		{StatusArchived, StatusPending, false},
		{Status("bogus"), StatusActive, false},
		{StatusActive, Status("bogus"), false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestArchivedIsTerminal(t *testing.T) {
	if !Transitions.Terminal(StatusArchived) {
		t.Fatal("archived should be terminal")
	}
	for _, to := range Transitions.States() {
		if CanTransition(StatusArchived, to) {
			t.Errorf("archived account permitted transition to %q", to)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusActive, StatusInactive, StatusSuspended, StatusArchived} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus(Status("deleted")) {
		t.Fatal("ValidStatus should reject unknown values")
	}
}
