package scheduling

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/clinic/clinic/pkg/pagination"
)

// Service coordinates appointment registration, lifecycle changes and
// calendar management. Booking order: referenced doctor and patient must
// exist, the patient must not already hold the same (date, time) key, and
// the resolver must accept the slot. The storage unique key on
// (date, time, patient) remains the authoritative guard against races.
type Service struct {
	appointments AppointmentRepository
	calendar     CalendarRepository
	statuses     StatusRepository
	doctors      DoctorDirectory
	patients     PatientDirectory
	resolver     *Resolver
	engine       *Engine
	now          func() time.Time
}

func NewService(
	appointments AppointmentRepository,
	calendar CalendarRepository,
	statuses StatusRepository,
	doctors DoctorDirectory,
	patients PatientDirectory,
) *Service {
	return &Service{
		appointments: appointments,
		calendar:     calendar,
		statuses:     statuses,
		doctors:      doctors,
		patients:     patients,
		resolver:     NewResolver(calendar, appointments),
		engine:       NewEngine(statuses),
		now:          time.Now,
	}
}

// RegisterAppointment validates and persists a new booking in Pending
// status. On success the stored appointment is returned with its status
// fields populated.
func (s *Service) RegisterAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	if a.DoctorID == "" {
		return nil, &ValidationError{Field: "doctor_id", Reason: "required"}
	}
	if a.PatientID <= 0 {
		return nil, &ValidationError{Field: "patient_id", Reason: "required"}
	}
	if a.Duration < 0 {
		return nil, &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	if a.Duration == 0 {
		a.Duration = DefaultAppointmentDuration
	}

	ok, err := s.doctors.DoctorExists(ctx, a.DoctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Resource: "doctor", ID: a.DoctorID}
	}
	ok, err = s.patients.PatientExists(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Resource: "patient", ID: strconv.Itoa(a.PatientID)}
	}

	if existing, err := s.appointments.GetByKey(ctx, a.Key()); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &SlotUnavailableError{Reason: fmt.Sprintf(
			"patient %d already has an appointment at %s %s", a.PatientID, a.Date, a.Time)}
	}

	if err := s.resolver.ValidateSlot(ctx, SlotRequest{
		Date:     a.Date,
		Time:     a.Time,
		DoctorID: a.DoctorID,
		Duration: a.Duration,
	}); err != nil {
		return nil, err
	}

	a.Status = StatusPending
	a.StatusID, err = s.statuses.IDForName(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ChangeStatus applies a lifecycle action to an existing appointment and
// persists the result.
func (s *Service) ChangeStatus(ctx context.Context, key AppointmentKey, action Action) (*Appointment, error) {
	a, err := s.appointments.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Resource: "appointment", ID: key.String()}
	}
	if err := s.engine.Apply(ctx, a, action); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAppointment removes an appointment in any status, terminal
// included.
func (s *Service) DeleteAppointment(ctx context.Context, key AppointmentKey) error {
	a, err := s.appointments.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if a == nil {
		return &NotFoundError{Resource: "appointment", ID: key.String()}
	}
	return s.appointments.Delete(ctx, key)
}

// AppointmentUpdate carries the mutable non-status fields. Nil pointers
// leave the stored value untouched.
type AppointmentUpdate struct {
	Duration   *int    `json:"duration,omitempty"`
	Reason     *string `json:"reason,omitempty"`
	Diagnosis  *string `json:"diagnosis,omitempty"`
	RoomNumber *int    `json:"room_number,omitempty"`
	BranchID   *int    `json:"branch_id,omitempty"`
}

// UpdateAppointment patches an appointment's detail fields. Status changes
// go through ChangeStatus only.
func (s *Service) UpdateAppointment(ctx context.Context, key AppointmentKey, upd AppointmentUpdate) (*Appointment, error) {
	a, err := s.appointments.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Resource: "appointment", ID: key.String()}
	}
	if upd.Duration != nil {
		if *upd.Duration <= 0 {
			return nil, &ValidationError{Field: "duration", Reason: "must be positive"}
		}
		a.Duration = *upd.Duration
	}
	if upd.Reason != nil {
		a.Reason = *upd.Reason
	}
	if upd.Diagnosis != nil {
		a.Diagnosis = *upd.Diagnosis
	}
	if upd.RoomNumber != nil {
		a.RoomNumber = *upd.RoomNumber
	}
	if upd.BranchID != nil {
		a.BranchID = *upd.BranchID
	}
	if err := s.appointments.Update(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAppointment fetches one appointment by its composite key.
func (s *Service) GetAppointment(ctx context.Context, key AppointmentKey) (*Appointment, error) {
	a, err := s.appointments.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &NotFoundError{Resource: "appointment", ID: key.String()}
	}
	return a, nil
}

func (s *Service) ListAppointments(ctx context.Context, p pagination.Params) ([]Appointment, int, error) {
	return s.appointments.List(ctx, p)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID string, p pagination.Params) ([]Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, p)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int, p pagination.Params) ([]Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, p)
}

// CreateRegularSchedule adds a weekly template for a doctor.
func (s *Service) CreateRegularSchedule(ctx context.Context, sched RegularSchedule) error {
	ok, err := s.doctors.DoctorExists(ctx, sched.DoctorID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: "doctor", ID: sched.DoctorID}
	}
	if sched.Weekday < 1 || sched.Weekday > 7 {
		return &ValidationError{Field: "weekday", Reason: "must be 1 (Monday) through 7 (Sunday)"}
	}
	if sched.SlotDuration <= 0 {
		return &ValidationError{Field: "slot_duration", Reason: "must be positive"}
	}
	if sched.Start >= sched.End {
		return &ValidationError{Field: "time range", Reason: "start must precede end"}
	}
	return s.calendar.CreateRegular(ctx, sched)
}

func (s *Service) DeleteRegularSchedule(ctx context.Context, key RegularScheduleKey) error {
	return s.calendar.DeleteRegular(ctx, key)
}

func (s *Service) ListRegularSchedules(ctx context.Context, doctorID string) ([]RegularSchedule, error) {
	return s.calendar.ListRegular(ctx, doctorID, 0)
}

// CreateExceptionalSchedule adds a dated exception. The start date may not
// lie in the past.
func (s *Service) CreateExceptionalSchedule(ctx context.Context, sched ExceptionalSchedule) error {
	ok, err := s.doctors.DoctorExists(ctx, sched.DoctorID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: "doctor", ID: sched.DoctorID}
	}
	if sched.StartDate.Before(DateOf(s.now())) {
		return &ValidationError{Field: "start_date", Reason: "must not be in the past"}
	}
	if sched.EndDate.Before(sched.StartDate) {
		return &ValidationError{Field: "date range", Reason: "end must not precede start"}
	}
	if sched.Start >= sched.End {
		return &ValidationError{Field: "time range", Reason: "start must precede end"}
	}
	return s.calendar.CreateExceptional(ctx, sched)
}

func (s *Service) DeleteExceptionalSchedule(ctx context.Context, key ExceptionalScheduleKey) error {
	return s.calendar.DeleteExceptional(ctx, key)
}

func (s *Service) ListExceptionalSchedules(ctx context.Context, doctorID string) ([]ExceptionalSchedule, error) {
	return s.calendar.ListExceptional(ctx, doctorID)
}

// AvailableSlots enumerates the open slots for a doctor over [from, to].
func (s *Service) AvailableSlots(ctx context.Context, doctorID string, from, to Date) ([]Slot, error) {
	ok, err := s.doctors.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
	}
	return s.resolver.EnumerateSlots(ctx, doctorID, from, to)
}

// UpcomingOnDate returns the occupying appointments scheduled on date, with
// contact details. Used by the reminder notifier for next-day notices.
func (s *Service) UpcomingOnDate(ctx context.Context, date Date) ([]UpcomingAppointment, error) {
	return s.appointments.ListUpcoming(ctx, date, 0, TimeOfDay(24*60))
}

// UpcomingWithin returns today's occupying appointments starting within the
// next d, measured from the service clock.
func (s *Service) UpcomingWithin(ctx context.Context, d time.Duration) ([]UpcomingAppointment, error) {
	now := s.now()
	from := TimeOfDay(now.Hour()*60 + now.Minute())
	to := from.Add(int(d.Minutes()))
	if to > TimeOfDay(24*60) {
		to = TimeOfDay(24 * 60)
	}
	return s.appointments.ListUpcoming(ctx, DateOf(now), from, to)
}
