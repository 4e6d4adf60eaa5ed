package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/clinic/clinic/pkg/pagination"
)

// -- Mock Repositories --

type mockCalendarRepo struct {
	regular     []RegularSchedule
	exceptional []ExceptionalSchedule
}

func newMockCalendarRepo() *mockCalendarRepo { return &mockCalendarRepo{} }

func (m *mockCalendarRepo) CreateRegular(_ context.Context, s RegularSchedule) error {
	for _, existing := range m.regular {
		if existing.Key() == s.Key() {
			return &ValidationError{Field: "schedule", Reason: "an identical weekly template already exists"}
		}
	}
	m.regular = append(m.regular, s)
	return nil
}

func (m *mockCalendarRepo) DeleteRegular(_ context.Context, key RegularScheduleKey) error {
	for i, s := range m.regular {
		if s.Key() == key {
			m.regular = append(m.regular[:i], m.regular[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "regular schedule", ID: key.DoctorID}
}

func (m *mockCalendarRepo) ListRegular(_ context.Context, doctorID string, weekday int) ([]RegularSchedule, error) {
	var out []RegularSchedule
	for _, s := range m.regular {
		if s.DoctorID == doctorID && (weekday == 0 || s.Weekday == weekday) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockCalendarRepo) CreateExceptional(_ context.Context, s ExceptionalSchedule) error {
	for _, existing := range m.exceptional {
		if existing.Key() == s.Key() {
			return &ValidationError{Field: "schedule", Reason: "an identical exception already exists"}
		}
	}
	m.exceptional = append(m.exceptional, s)
	return nil
}

func (m *mockCalendarRepo) DeleteExceptional(_ context.Context, key ExceptionalScheduleKey) error {
	for i, s := range m.exceptional {
		if s.Key() == key {
			m.exceptional = append(m.exceptional[:i], m.exceptional[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "exceptional schedule", ID: key.DoctorID}
}

func (m *mockCalendarRepo) ListExceptional(_ context.Context, doctorID string) ([]ExceptionalSchedule, error) {
	var out []ExceptionalSchedule
	for _, s := range m.exceptional {
		if s.DoctorID == doctorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockCalendarRepo) ListExceptionalCovering(_ context.Context, doctorID string, from, to Date) ([]ExceptionalSchedule, error) {
	var out []ExceptionalSchedule
	for _, s := range m.exceptional {
		if s.DoctorID == doctorID && !s.StartDate.After(to) && !s.EndDate.Before(from) {
			out = append(out, s)
		}
	}
	return out, nil
}

type contact struct {
	name, email, phone string
}

type mockApptRepo struct {
	appts    map[AppointmentKey]Appointment
	patients map[int]contact
	doctors  map[string]string
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{
		appts:    make(map[AppointmentKey]Appointment),
		patients: make(map[int]contact),
		doctors:  make(map[string]string),
	}
}

func (m *mockApptRepo) Create(_ context.Context, a Appointment) error {
	if _, ok := m.appts[a.Key()]; ok {
		return &SlotUnavailableError{Reason: fmt.Sprintf(
			"patient %d already has an appointment at %s %s", a.PatientID, a.Date, a.Time)}
	}
	m.appts[a.Key()] = a
	return nil
}

func (m *mockApptRepo) GetByKey(_ context.Context, key AppointmentKey) (*Appointment, error) {
	a, ok := m.appts[key]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *mockApptRepo) Update(_ context.Context, a Appointment) error {
	if _, ok := m.appts[a.Key()]; !ok {
		return &NotFoundError{Resource: "appointment", ID: a.Key().String()}
	}
	m.appts[a.Key()] = a
	return nil
}

func (m *mockApptRepo) Delete(_ context.Context, key AppointmentKey) error {
	if _, ok := m.appts[key]; !ok {
		return &NotFoundError{Resource: "appointment", ID: key.String()}
	}
	delete(m.appts, key)
	return nil
}

func (m *mockApptRepo) List(_ context.Context, _ pagination.Params) ([]Appointment, int, error) {
	var out []Appointment
	for _, a := range m.appts {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListByDoctor(_ context.Context, doctorID string, _ pagination.Params) ([]Appointment, int, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListByPatient(_ context.Context, patientID int, _ pagination.Params) ([]Appointment, int, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListOccupying(_ context.Context, doctorID string, from, to Date) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID && !a.Date.Before(from) && !a.Date.After(to) && a.Status.Occupies() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockApptRepo) ListUpcoming(_ context.Context, date Date, from, to TimeOfDay) ([]UpcomingAppointment, error) {
	var out []UpcomingAppointment
	for _, a := range m.appts {
		if a.Date != date || a.Time < from || a.Time >= to || !a.Status.Occupies() {
			continue
		}
		p := m.patients[a.PatientID]
		out = append(out, UpcomingAppointment{
			Appointment:  a,
			PatientName:  p.name,
			PatientEmail: p.email,
			PatientPhone: p.phone,
			DoctorName:   m.doctors[a.DoctorID],
		})
	}
	return out, nil
}

func (m *mockApptRepo) ListAttended(_ context.Context, doctorID string, from, to Date) ([]AttendedVisit, error) {
	var out []AttendedVisit
	for _, a := range m.appts {
		if a.DoctorID != doctorID || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		if a.Status != StatusAttended && a.Status != StatusFinalized {
			continue
		}
		out = append(out, AttendedVisit{Appointment: a, PatientName: m.patients[a.PatientID].name})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (m *mockApptRepo) CountByStatus(_ context.Context, doctorID string, from, to Date) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, a := range m.appts {
		if a.DoctorID == doctorID && !a.Date.Before(from) && !a.Date.After(to) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

type mockStatusRepo struct {
	byName map[Status]int
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{byName: map[Status]int{
		StatusPending:   1,
		StatusConfirmed: 2,
		StatusAnnounced: 3,
		StatusAttended:  4,
		StatusFinalized: 5,
		StatusCancelled: 6,
		StatusAbsent:    7,
	}}
}

func (m *mockStatusRepo) IDForName(_ context.Context, s Status) (int, error) {
	id, ok := m.byName[s]
	if !ok {
		return 0, &ConfigError{Missing: fmt.Sprintf("appointment status %q is not seeded", s)}
	}
	return id, nil
}

func (m *mockStatusRepo) NameForID(_ context.Context, id int) (Status, error) {
	for name, i := range m.byName {
		if i == id {
			return name, nil
		}
	}
	return "", &ConfigError{Missing: fmt.Sprintf("appointment status id %d is not seeded", id)}
}

type mockDirectory struct {
	doctors  map[string]bool
	patients map[int]bool
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{doctors: make(map[string]bool), patients: make(map[int]bool)}
}

func (m *mockDirectory) DoctorExists(_ context.Context, licenseNumber string) (bool, error) {
	return m.doctors[licenseNumber], nil
}

func (m *mockDirectory) PatientExists(_ context.Context, id int) (bool, error) {
	return m.patients[id], nil
}

// -- Test Fixture --

// mustDate helps the tests stay on known weekdays: 2026-01-05 is a Monday.
func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return v
}

type testEnv struct {
	svc      *Service
	calendar *mockCalendarRepo
	appts    *mockApptRepo
	statuses *mockStatusRepo
	dir      *mockDirectory
}

func newTestEnv() *testEnv {
	calendar := newMockCalendarRepo()
	appts := newMockApptRepo()
	statuses := newMockStatusRepo()
	dir := newMockDirectory()
	dir.doctors["MD-1001"] = true
	dir.patients[1] = true
	dir.patients[2] = true
	svc := NewService(appts, calendar, statuses, dir, dir)
	// freeze the clock well before the fixture dates
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC) }
	return &testEnv{svc: svc, calendar: calendar, appts: appts, statuses: statuses, dir: dir}
}

func (e *testEnv) addMondayClinic(t *testing.T) {
	t.Helper()
	err := e.calendar.CreateRegular(context.Background(), RegularSchedule{
		DoctorID:     "MD-1001",
		SpecialtyID:  1,
		Weekday:      1,
		Start:        mustTime(t, "09:00"),
		End:          mustTime(t, "12:00"),
		SlotDuration: 30,
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

func newAppointment(t *testing.T, date, clock string) Appointment {
	t.Helper()
	return Appointment{
		Date:        mustDate(t, date),
		Time:        mustTime(t, clock),
		PatientID:   1,
		DoctorID:    "MD-1001",
		SpecialtyID: 1,
		Duration:    30,
	}
}

// -- Registration Tests --

func TestRegisterAppointment(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	created, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != StatusPending {
		t.Errorf("expected pending, got %s", created.Status)
	}
	if created.StatusID != 1 {
		t.Errorf("expected status id 1, got %d", created.StatusID)
	}
}

func TestRegisterAppointment_DefaultsDuration(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a := newAppointment(t, "2026-01-05", "09:00")
	a.Duration = 0
	created, err := env.svc.RegisterAppointment(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Duration != DefaultAppointmentDuration {
		t.Errorf("expected duration %d, got %d", DefaultAppointmentDuration, created.Duration)
	}
}

func TestRegisterAppointment_UnknownDoctor(t *testing.T) {
	env := newTestEnv()
	a := newAppointment(t, "2026-01-05", "09:00")
	a.DoctorID = "MD-9999"
	_, err := env.svc.RegisterAppointment(context.Background(), a)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Resource != "doctor" {
		t.Errorf("expected doctor not found, got %s", notFound.Resource)
	}
}

func TestRegisterAppointment_UnknownPatient(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)
	a := newAppointment(t, "2026-01-05", "09:00")
	a.PatientID = 99
	_, err := env.svc.RegisterAppointment(context.Background(), a)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Resource != "patient" {
		t.Errorf("expected patient not found, got %s", notFound.Resource)
	}
}

func TestRegisterAppointment_DuplicateKey(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	if _, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	var unavailable *SlotUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SlotUnavailableError, got %v", err)
	}
}

func TestRegisterAppointment_RejectedSlotLeavesNothingBehind(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	// Tuesday: no schedule configured.
	_, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-06", "09:00"))
	var unavailable *SlotUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SlotUnavailableError, got %v", err)
	}
	if len(env.appts.appts) != 0 {
		t.Errorf("expected no stored appointments, got %d", len(env.appts.appts))
	}
}

// Scenario: two patients race for overlapping slots with the same doctor.
func TestRegisterAppointment_OverlapOtherPatient(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	if _, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second := newAppointment(t, "2026-01-05", "09:15")
	second.PatientID = 2
	_, err := env.svc.RegisterAppointment(context.Background(), second)
	var unavailable *SlotUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SlotUnavailableError, got %v", err)
	}

	third := newAppointment(t, "2026-01-05", "09:30")
	third.PatientID = 2
	if _, err := env.svc.RegisterAppointment(context.Background(), third); err != nil {
		t.Fatalf("non-overlapping booking should pass: %v", err)
	}
}

// -- Lifecycle Tests --

func TestChangeStatus(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	updated, err := env.svc.ChangeStatus(context.Background(), a.Key(), ActionConfirm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}
	if updated.StatusID != 2 {
		t.Errorf("expected status id 2, got %d", updated.StatusID)
	}
}

func TestChangeStatus_NotFound(t *testing.T) {
	env := newTestEnv()
	key := AppointmentKey{Date: mustDate(t, "2026-01-05"), Time: mustTime(t, "09:00"), PatientID: 1}
	_, err := env.svc.ChangeStatus(context.Background(), key, ActionConfirm)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestChangeStatus_CancelledThenConfirm(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := env.svc.ChangeStatus(context.Background(), a.Key(), ActionCancel); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = env.svc.ChangeStatus(context.Background(), a.Key(), ActionConfirm)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	stored, _ := env.appts.GetByKey(context.Background(), a.Key())
	if stored.Status != StatusCancelled {
		t.Errorf("rejection must leave status unchanged, got %s", stored.Status)
	}
}

func TestChangeStatus_FreesSlotWhenCancelled(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := env.svc.ChangeStatus(context.Background(), a.Key(), ActionCancel); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	rebook := newAppointment(t, "2026-01-05", "09:00")
	rebook.PatientID = 2
	if _, err := env.svc.RegisterAppointment(context.Background(), rebook); err != nil {
		t.Fatalf("cancelled slot should be rebookable: %v", err)
	}
}

// -- Deletion Tests --

func TestDeleteAppointment(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := env.svc.DeleteAppointment(context.Background(), a.Key()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored, _ := env.appts.GetByKey(context.Background(), a.Key()); stored != nil {
		t.Error("expected appointment gone after delete")
	}
}

func TestDeleteAppointment_TerminalState(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	for _, action := range []Action{ActionConfirm, ActionAttend, ActionFinalize} {
		if _, err := env.svc.ChangeStatus(context.Background(), a.Key(), action); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}
	// deletes are unrestricted, finalized appointments included
	if err := env.svc.DeleteAppointment(context.Background(), a.Key()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteAppointment_NotFound(t *testing.T) {
	env := newTestEnv()
	key := AppointmentKey{Date: mustDate(t, "2026-01-05"), Time: mustTime(t, "09:00"), PatientID: 1}
	err := env.svc.DeleteAppointment(context.Background(), key)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

// -- Update Tests --

func TestUpdateAppointment(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	reason := "routine checkup"
	updated, err := env.svc.UpdateAppointment(context.Background(), a.Key(), AppointmentUpdate{Reason: &reason})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Reason != reason {
		t.Errorf("expected reason %q, got %q", reason, updated.Reason)
	}
	if updated.Status != StatusPending {
		t.Errorf("detail update must not touch status, got %s", updated.Status)
	}
}

func TestUpdateAppointment_RejectsNonPositiveDuration(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)

	a, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00"))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	zero := 0
	_, err = env.svc.UpdateAppointment(context.Background(), a.Key(), AppointmentUpdate{Duration: &zero})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// -- Calendar Management Tests --

func TestCreateRegularSchedule_Validation(t *testing.T) {
	env := newTestEnv()
	base := RegularSchedule{
		DoctorID: "MD-1001", SpecialtyID: 1, Weekday: 1,
		Start: mustTime(t, "09:00"), End: mustTime(t, "12:00"), SlotDuration: 30,
	}

	bad := base
	bad.SlotDuration = 0
	if err := env.svc.CreateRegularSchedule(context.Background(), bad); err == nil {
		t.Error("expected error for zero slot duration")
	}

	bad = base
	bad.Start, bad.End = bad.End, bad.Start
	if err := env.svc.CreateRegularSchedule(context.Background(), bad); err == nil {
		t.Error("expected error for inverted window")
	}

	bad = base
	bad.Weekday = 8
	if err := env.svc.CreateRegularSchedule(context.Background(), bad); err == nil {
		t.Error("expected error for weekday out of range")
	}

	if err := env.svc.CreateRegularSchedule(context.Background(), base); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestCreateExceptionalSchedule_PastStartDate(t *testing.T) {
	env := newTestEnv()
	err := env.svc.CreateExceptionalSchedule(context.Background(), ExceptionalSchedule{
		DoctorID: "MD-1001", SpecialtyID: 1,
		StartDate: mustDate(t, "2025-12-01"), EndDate: mustDate(t, "2025-12-02"),
		Start: mustTime(t, "09:00"), End: mustTime(t, "12:00"),
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateExceptionalSchedule_InvertedDateRange(t *testing.T) {
	env := newTestEnv()
	err := env.svc.CreateExceptionalSchedule(context.Background(), ExceptionalSchedule{
		DoctorID: "MD-1001", SpecialtyID: 1,
		StartDate: mustDate(t, "2026-02-10"), EndDate: mustDate(t, "2026-02-09"),
		Start: mustTime(t, "09:00"), End: mustTime(t, "12:00"),
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// -- Notifier Read-Model Tests --

func TestUpcomingOnDate(t *testing.T) {
	env := newTestEnv()
	env.addMondayClinic(t)
	env.appts.patients[1] = contact{name: "Ana Perez", email: "ana@example.com"}
	env.appts.doctors["MD-1001"] = "Dr. Gomez"

	if _, err := env.svc.RegisterAppointment(context.Background(), newAppointment(t, "2026-01-05", "09:00")); err != nil {
		t.Fatalf("booking: %v", err)
	}
	items, err := env.svc.UpcomingOnDate(context.Background(), mustDate(t, "2026-01-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 upcoming, got %d", len(items))
	}
	if items[0].PatientEmail != "ana@example.com" {
		t.Errorf("expected contact join, got %q", items[0].PatientEmail)
	}
}

func TestUpcomingWithin(t *testing.T) {
	env := newTestEnv()
	// service clock is 2026-01-01 08:00; that day is a Thursday
	if err := env.calendar.CreateRegular(context.Background(), RegularSchedule{
		DoctorID: "MD-1001", SpecialtyID: 1, Weekday: 4,
		Start: mustTime(t, "08:00"), End: mustTime(t, "18:00"), SlotDuration: 30,
	}); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	near := newAppointment(t, "2026-01-01", "09:00")
	far := newAppointment(t, "2026-01-01", "15:00")
	far.PatientID = 2
	if _, err := env.svc.RegisterAppointment(context.Background(), near); err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := env.svc.RegisterAppointment(context.Background(), far); err != nil {
		t.Fatalf("booking: %v", err)
	}

	items, err := env.svc.UpcomingWithin(context.Background(), 2*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only the appointment within 2h, got %d", len(items))
	}
	if items[0].Time != mustTime(t, "09:00") {
		t.Errorf("expected the 09:00 appointment, got %s", items[0].Time)
	}
}
