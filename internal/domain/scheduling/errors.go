package scheduling

import "fmt"

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// SlotUnavailableError rejects a booking with the reason the slot cannot be
// taken: a conflicting appointment, a blackout, or no configured coverage.
type SlotUnavailableError struct {
	Reason string
}

func (e *SlotUnavailableError) Error() string {
	return e.Reason
}

// InvalidTransitionError reports a lifecycle action that is not defined for
// the appointment's current status.
type InvalidTransitionError struct {
	Action Action
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q is not allowed from status %q", e.Action, e.Status)
}

// ConfigError reports missing reference data the system cannot operate
// without, such as an unseeded status name.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Missing)
}

// ValidationError rejects malformed input before it reaches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
