// Package scheduling implements the clinic's appointment scheduling core:
// doctor calendars (weekly templates plus dated exceptions), slot
// availability resolution, and the appointment lifecycle state machine.
package scheduling

import (
	"fmt"
	"time"
)

// Durations in minutes.
const (
	// DefaultAppointmentDuration is assumed for an appointment whose
	// duration was never recorded or recorded as zero.
	DefaultAppointmentDuration = 30

	// DefaultExceptionalSlotDuration is the tiling step for an available
	// exceptional window when the doctor has no regular schedule for the
	// same specialty to borrow a duration from.
	DefaultExceptionalSlotDuration = 20
)

// Date is a calendar date with no time zone or clock component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time converts d to a time.Time at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the ISO weekday, Monday=1 through Sunday=7.
func (d Date) Weekday() int {
	wd := int(d.Time().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// AddDays returns the date n days after d. n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or 1 ordering d against other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s: expected JSON string", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// WeekdayName maps an ISO weekday number to its English name for use in
// availability rejection messages.
func WeekdayName(iso int) string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if iso < 1 || iso > 7 {
		return fmt.Sprintf("weekday(%d)", iso)
	}
	return names[iso-1]
}

// TimeOfDay is a clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24-hour clock). Both fields must be two
// digits and nothing may follow the minutes.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns t shifted by minutes. The result is not clamped to a day.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time %s: expected JSON string", s)
	}
	parsed, err := ParseTimeOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open time window [Start, End) within one day.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overlaps reports whether the two windows share any time. Touching
// endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Contains reports whether other lies entirely within i, endpoints
// inclusive.
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && i.End >= other.End
}

// Status is an appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAnnounced Status = "announced"
	StatusAttended  Status = "attended"
	StatusFinalized Status = "finalized"
	StatusCancelled Status = "cancelled"
	StatusAbsent    Status = "absent"
)

// Occupies reports whether an appointment in this status blocks its slot
// for other patients. Cancelled, absent and completed visits free the slot.
func (s Status) Occupies() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAnnounced:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle action applies.
func (s Status) Terminal() bool {
	switch s {
	case StatusFinalized, StatusCancelled, StatusAbsent:
		return true
	}
	return false
}

// Action is a lifecycle transition request.
type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionAnnounce   Action = "announce"
	ActionAttend     Action = "attend"
	ActionFinalize   Action = "finalize"
	ActionMarkAbsent Action = "mark-absent"
)

// AppointmentKey identifies an appointment. A patient holds at most one
// appointment per date and start time.
type AppointmentKey struct {
	Date      Date
	Time      TimeOfDay
	PatientID int
}

func (k AppointmentKey) String() string {
	return fmt.Sprintf("%s %s patient=%d", k.Date, k.Time, k.PatientID)
}

// Appointment is a committed booking.
type Appointment struct {
	Date        Date      `json:"date"`
	Time        TimeOfDay `json:"time"`
	PatientID   int       `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	SpecialtyID int       `json:"specialty_id"`
	StatusID    int       `json:"status_id"`
	Status      Status    `json:"status"`
	Duration    int       `json:"duration"` // minutes; 0 means unrecorded
	Reason      string    `json:"reason,omitempty"`
	Diagnosis   string    `json:"diagnosis,omitempty"`
	RoomNumber  int       `json:"room_number,omitempty"`
	BranchID    int       `json:"branch_id,omitempty"`
}

// Key returns the appointment's identifying triple.
func (a Appointment) Key() AppointmentKey {
	return AppointmentKey{Date: a.Date, Time: a.Time, PatientID: a.PatientID}
}

// Window returns the appointment's occupied interval, substituting the
// default duration when none was recorded.
func (a Appointment) Window() Interval {
	d := a.Duration
	if d <= 0 {
		d = DefaultAppointmentDuration
	}
	return Interval{Start: a.Time, End: a.Time.Add(d)}
}

// RegularScheduleKey identifies one weekly template row.
type RegularScheduleKey struct {
	DoctorID    string
	SpecialtyID int
	Weekday     int // ISO 1..7
	Start       TimeOfDay
}

// RegularSchedule is a recurring weekly attendance window for a doctor in
// one specialty. SlotDuration tiles the window into bookable starts;
// BranchID is where the doctor attends and flows into every slot the
// window produces.
type RegularSchedule struct {
	DoctorID     string    `json:"doctor_id"`
	SpecialtyID  int       `json:"specialty_id"`
	Weekday      int       `json:"weekday"` // ISO 1..7
	Start        TimeOfDay `json:"start_time"`
	End          TimeOfDay `json:"end_time"`
	SlotDuration int       `json:"slot_duration"` // minutes
	BranchID     int       `json:"branch_id"`
}

// Key returns the template's identifying quadruple.
func (r RegularSchedule) Key() RegularScheduleKey {
	return RegularScheduleKey{DoctorID: r.DoctorID, SpecialtyID: r.SpecialtyID, Weekday: r.Weekday, Start: r.Start}
}

// Window returns the template's daily interval.
func (r RegularSchedule) Window() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// ExceptionalScheduleKey identifies one dated exception row.
type ExceptionalScheduleKey struct {
	DoctorID    string
	SpecialtyID int
	StartDate   Date
	Start       TimeOfDay
}

// ExceptionalSchedule is a dated override of a doctor's calendar. When
// Available it adds extra coverage; otherwise it is a blackout that blocks
// any slot it fully contains, with Reason carried into rejections.
type ExceptionalSchedule struct {
	DoctorID    string    `json:"doctor_id"`
	SpecialtyID int       `json:"specialty_id"`
	StartDate   Date      `json:"start_date"`
	EndDate     Date      `json:"end_date"`
	Start       TimeOfDay `json:"start_time"`
	End         TimeOfDay `json:"end_time"`
	Available   bool      `json:"available"`
	Reason      string    `json:"reason,omitempty"`
	BranchID    int       `json:"branch_id"`
}

// Key returns the exception's identifying quadruple.
func (e ExceptionalSchedule) Key() ExceptionalScheduleKey {
	return ExceptionalScheduleKey{DoctorID: e.DoctorID, SpecialtyID: e.SpecialtyID, StartDate: e.StartDate, Start: e.Start}
}

// Window returns the exception's daily interval.
func (e ExceptionalSchedule) Window() Interval {
	return Interval{Start: e.Start, End: e.End}
}

// CoversDate reports whether date falls within the exception's date range,
// endpoints inclusive.
func (e ExceptionalSchedule) CoversDate(d Date) bool {
	return !d.Before(e.StartDate) && !d.After(e.EndDate)
}

// Slot is one bookable opening produced by availability enumeration.
// BranchID tells the caller where the visit takes place.
type Slot struct {
	Date        Date      `json:"date"`
	Time        TimeOfDay `json:"time"`
	DoctorID    string    `json:"doctor_id"`
	SpecialtyID int       `json:"specialty_id"`
	Duration    int       `json:"duration"` // minutes
	BranchID    int       `json:"branch_id"`
}

// SlotKey identifies a slot for deduplication across overlapping sources.
type SlotKey struct {
	Date        Date
	Time        TimeOfDay
	DoctorID    string
	SpecialtyID int
}

// Key returns the slot's identity.
func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Time: s.Time, DoctorID: s.DoctorID, SpecialtyID: s.SpecialtyID}
}

// UpcomingAppointment is an appointment joined with the contact details the
// reminder notifier needs.
type UpcomingAppointment struct {
	Appointment
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone,omitempty"`
	DoctorName   string `json:"doctor_name"`
}
