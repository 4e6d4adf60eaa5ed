package scheduling

import "context"

// transitions is the lifecycle table: current status -> action -> next
// status. An absent pair is an invalid transition. Finalized, cancelled and
// absent have no outgoing edges.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionConfirm:    StatusConfirmed,
		ActionCancel:     StatusCancelled,
		ActionReschedule: StatusPending,
		ActionAnnounce:   StatusAnnounced,
	},
	StatusConfirmed: {
		ActionCancel:   StatusCancelled,
		ActionAnnounce: StatusAnnounced,
		ActionAttend:   StatusAttended,
	},
	StatusAnnounced: {
		ActionAttend: StatusAttended,
	},
	StatusAttended: {
		ActionFinalize:   StatusFinalized,
		ActionMarkAbsent: StatusAbsent,
	},
}

// Engine applies lifecycle actions to appointments. Target status IDs are
// resolved through the status lookup on every transition so an unseeded
// status surfaces as a ConfigError rather than a silent wrong write.
type Engine struct {
	statuses StatusRepository
}

func NewEngine(statuses StatusRepository) *Engine {
	return &Engine{statuses: statuses}
}

// Apply mutates a in place to its post-action status. It returns
// *InvalidTransitionError when the table has no entry for (a.Status,
// action) and *ConfigError when the target status name is not seeded.
// On any error a is left unchanged.
func (e *Engine) Apply(ctx context.Context, a *Appointment, action Action) error {
	next, ok := transitions[a.Status][action]
	if !ok {
		return &InvalidTransitionError{Action: action, Status: a.Status}
	}
	id, err := e.statuses.IDForName(ctx, next)
	if err != nil {
		return err
	}
	a.Status = next
	a.StatusID = id
	return nil
}

// AllowedActions lists the actions defined for a status, in stable order.
func AllowedActions(s Status) []Action {
	row := transitions[s]
	var out []Action
	for _, a := range []Action{ActionConfirm, ActionCancel, ActionReschedule, ActionAnnounce, ActionAttend, ActionFinalize, ActionMarkAbsent} {
		if _, ok := row[a]; ok {
			out = append(out, a)
		}
	}
	return out
}
