package scheduling

import (
	"context"

	"github.com/clinic/clinic/pkg/pagination"
)

// CalendarRepository stores doctors' weekly templates and dated exceptions.
type CalendarRepository interface {
	CreateRegular(ctx context.Context, s RegularSchedule) error
	DeleteRegular(ctx context.Context, key RegularScheduleKey) error
	// ListRegular returns all weekly templates for a doctor. A zero
	// weekday means all weekdays.
	ListRegular(ctx context.Context, doctorID string, weekday int) ([]RegularSchedule, error)

	CreateExceptional(ctx context.Context, s ExceptionalSchedule) error
	DeleteExceptional(ctx context.Context, key ExceptionalScheduleKey) error
	ListExceptional(ctx context.Context, doctorID string) ([]ExceptionalSchedule, error)
	// ListExceptionalCovering returns the doctor's exceptions whose date
	// range includes any day in [from, to].
	ListExceptionalCovering(ctx context.Context, doctorID string, from, to Date) ([]ExceptionalSchedule, error)
}

// AppointmentRepository stores committed bookings. Create enforces the
// per-patient key (date, time, patient) and reports a duplicate as
// SlotUnavailableError.
type AppointmentRepository interface {
	Create(ctx context.Context, a Appointment) error
	GetByKey(ctx context.Context, key AppointmentKey) (*Appointment, error)
	Update(ctx context.Context, a Appointment) error
	Delete(ctx context.Context, key AppointmentKey) error

	List(ctx context.Context, p pagination.Params) ([]Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID string, p pagination.Params) ([]Appointment, int, error)
	ListByPatient(ctx context.Context, patientID int, p pagination.Params) ([]Appointment, int, error)

	// ListOccupying returns the doctor's appointments on days in
	// [from, to] whose status still blocks the slot.
	ListOccupying(ctx context.Context, doctorID string, from, to Date) ([]Appointment, error)

	// ListUpcoming returns occupying appointments on date starting within
	// [from, to), joined with patient and doctor contact details.
	ListUpcoming(ctx context.Context, date Date, from, to TimeOfDay) ([]UpcomingAppointment, error)

	// ListAttended returns the doctor's attended and finalized visits on
	// days in [from, to], joined with patient names, ordered by date and
	// time.
	ListAttended(ctx context.Context, doctorID string, from, to Date) ([]AttendedVisit, error)
	// CountByStatus counts the doctor's appointments per status on days
	// in [from, to].
	CountByStatus(ctx context.Context, doctorID string, from, to Date) (map[Status]int, error)
}

// StatusRepository resolves lifecycle status names against the seeded
// lookup table. A missing name is a ConfigError.
type StatusRepository interface {
	IDForName(ctx context.Context, s Status) (int, error)
	NameForID(ctx context.Context, id int) (Status, error)
}

// DoctorDirectory and PatientDirectory are the reference checks the
// coordinator performs before booking. The directory domain satisfies them.
type DoctorDirectory interface {
	DoctorExists(ctx context.Context, licenseNumber string) (bool, error)
}

type PatientDirectory interface {
	PatientExists(ctx context.Context, id int) (bool, error)
}
