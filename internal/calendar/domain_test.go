package calendar

import "testing"

func TestEventTransitions(t *testing.T) {
	cases := []struct {
		from, to EventStatus
		want     bool
	}{
		{EventScheduled, EventCompleted, true},
		{EventScheduled, EventCancelled, true},
		{EventCompleted, EventScheduled, false},
		{EventCancelled, EventScheduled, false},
		{EventStatus("bogus"), EventCompleted, false},
	}
	for _, tc := range cases {
		if got := EventTransitions.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
	for _, s := range []EventStatus{EventCompleted, EventCancelled} {
		if !EventTransitions.Terminal(s) {
			t.Errorf("%q should be terminal", s)
		}
	}
}

func TestRSVPRevisable(t *testing.T) {
	cases := []struct {
		from, to RSVPStatus
		want     bool
	}{
		{RSVPInvited, RSVPAccepted, true},
		{RSVPInvited, RSVPDeclined, true},
		{RSVPAccepted, RSVPDeclined, true},
		{RSVPDeclined, RSVPAccepted, true},
		{RSVPTentative, RSVPAccepted, true},
		{RSVPAccepted, RSVPInvited, false},
		{RSVPStatus("maybe"), RSVPAccepted, false},
	}
	for _, tc := range cases {
		if got := RSVPTransitions.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestNoTerminalRSVP(t *testing.T) {
	// People change their minds; every reply state stays revisable.
	for _, s := range RSVPTransitions.States() {
		if RSVPTransitions.Terminal(s) {
			t.Errorf("RSVP state %q should not be terminal", s)
		}
	}
}
