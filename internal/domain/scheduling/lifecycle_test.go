package scheduling

import (
	"context"
	"errors"
	"testing"
)

var allActions = []Action{
	ActionConfirm, ActionCancel, ActionReschedule,
	ActionAnnounce, ActionAttend, ActionFinalize, ActionMarkAbsent,
}

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusAnnounced,
	StatusAttended, StatusFinalized, StatusCancelled, StatusAbsent,
}

func newTestEngine() (*Engine, *mockStatusRepo) {
	statuses := newMockStatusRepo()
	return NewEngine(statuses), statuses
}

func TestApply_ValidTransitions(t *testing.T) {
	engine, _ := newTestEngine()
	cases := []struct {
		from   Status
		action Action
		want   Status
	}{
		{StatusPending, ActionConfirm, StatusConfirmed},
		{StatusPending, ActionCancel, StatusCancelled},
		{StatusPending, ActionReschedule, StatusPending},
		{StatusPending, ActionAnnounce, StatusAnnounced},
		{StatusConfirmed, ActionCancel, StatusCancelled},
		{StatusConfirmed, ActionAnnounce, StatusAnnounced},
		{StatusConfirmed, ActionAttend, StatusAttended},
		{StatusAnnounced, ActionAttend, StatusAttended},
		{StatusAttended, ActionFinalize, StatusFinalized},
		{StatusAttended, ActionMarkAbsent, StatusAbsent},
	}
	for _, tc := range cases {
		a := Appointment{Status: tc.from}
		if err := engine.Apply(context.Background(), &a, tc.action); err != nil {
			t.Errorf("%s + %s: unexpected error %v", tc.from, tc.action, err)
			continue
		}
		if a.Status != tc.want {
			t.Errorf("%s + %s: expected %s, got %s", tc.from, tc.action, tc.want, a.Status)
		}
		if a.StatusID == 0 {
			t.Errorf("%s + %s: status id not resolved", tc.from, tc.action)
		}
	}
}

// Every pair absent from the table must reject and leave the appointment
// untouched.
func TestApply_UndefinedPairsReject(t *testing.T) {
	engine, _ := newTestEngine()
	for _, from := range allStatuses {
		for _, action := range allActions {
			if _, ok := transitions[from][action]; ok {
				continue
			}
			a := Appointment{Status: from, StatusID: 42}
			err := engine.Apply(context.Background(), &a, action)
			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Errorf("%s + %s: expected InvalidTransitionError, got %v", from, action, err)
				continue
			}
			if invalid.Action != action || invalid.Status != from {
				t.Errorf("%s + %s: error names wrong pair: %v", from, action, invalid)
			}
			if a.Status != from || a.StatusID != 42 {
				t.Errorf("%s + %s: rejection mutated the appointment", from, action)
			}
		}
	}
}

func TestApply_TerminalStatesHaveNoTransitions(t *testing.T) {
	for _, terminal := range []Status{StatusFinalized, StatusCancelled, StatusAbsent} {
		if !terminal.Terminal() {
			t.Errorf("%s should report terminal", terminal)
		}
		if len(transitions[terminal]) != 0 {
			t.Errorf("%s must have no outgoing transitions", terminal)
		}
	}
}

func TestApply_UnknownAction(t *testing.T) {
	engine, _ := newTestEngine()
	a := Appointment{Status: StatusPending}
	err := engine.Apply(context.Background(), &a, Action("celebrate"))
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestApply_MissingStatusSeed(t *testing.T) {
	engine, statuses := newTestEngine()
	delete(statuses.byName, StatusConfirmed)

	a := Appointment{Status: StatusPending, StatusID: 1}
	err := engine.Apply(context.Background(), &a, ActionConfirm)
	var config *ConfigError
	if !errors.As(err, &config) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if a.Status != StatusPending || a.StatusID != 1 {
		t.Error("failed lookup must leave the appointment unchanged")
	}
}

func TestAllowedActions(t *testing.T) {
	got := AllowedActions(StatusAttended)
	if len(got) != 2 {
		t.Fatalf("expected 2 actions for attended, got %v", got)
	}
	if got[0] != ActionFinalize || got[1] != ActionMarkAbsent {
		t.Errorf("unexpected order or members: %v", got)
	}
	if actions := AllowedActions(StatusFinalized); len(actions) != 0 {
		t.Errorf("terminal state must allow nothing, got %v", actions)
	}
}
