package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SlotRequest is a candidate booking to validate.
type SlotRequest struct {
	Date     Date
	Time     TimeOfDay
	DoctorID string
	Duration int // minutes; <=0 means DefaultAppointmentDuration
}

// Window returns the candidate's interval with the default duration applied.
func (r SlotRequest) Window() Interval {
	d := r.Duration
	if d <= 0 {
		d = DefaultAppointmentDuration
	}
	return Interval{Start: r.Time, End: r.Time.Add(d)}
}

// Resolver answers whether a slot can be booked and enumerates the open
// slots in a doctor's calendar.
type Resolver struct {
	calendar     CalendarRepository
	appointments AppointmentRepository
}

func NewResolver(calendar CalendarRepository, appointments AppointmentRepository) *Resolver {
	return &Resolver{calendar: calendar, appointments: appointments}
}

// ValidateSlot checks a candidate booking against the doctor's calendar and
// existing bookings. Checks run in fixed priority order: a conflicting
// appointment wins over a blackout, a blackout wins over any coverage, and
// exceptional coverage is consulted before the weekly template. A rejection
// is returned as *SlotUnavailableError with the reason; nil means bookable.
func (r *Resolver) ValidateSlot(ctx context.Context, req SlotRequest) error {
	window := req.Window()

	// 1. Conflicting appointment for the same doctor.
	occupying, err := r.appointments.ListOccupying(ctx, req.DoctorID, req.Date, req.Date)
	if err != nil {
		return err
	}
	for _, a := range occupying {
		if window.Overlaps(a.Window()) {
			return &SlotUnavailableError{Reason: fmt.Sprintf(
				"doctor %s already has an appointment from %s to %s on %s",
				req.DoctorID, a.Window().Start, a.Window().End, req.Date)}
		}
	}

	exceptions, err := r.calendar.ListExceptionalCovering(ctx, req.DoctorID, req.Date, req.Date)
	if err != nil {
		return err
	}

	// 2. Blackout that fully contains the candidate window.
	for _, e := range exceptions {
		if !e.Available && e.CoversDate(req.Date) && e.Window().Contains(window) {
			reason := e.Reason
			if reason == "" {
				reason = "doctor unavailable"
			}
			return &SlotUnavailableError{Reason: fmt.Sprintf(
				"doctor %s is unavailable from %s to %s on %s: %s",
				req.DoctorID, e.Start, e.End, req.Date, reason)}
		}
	}

	// 3. Extra coverage from an available exception.
	for _, e := range exceptions {
		if e.Available && e.CoversDate(req.Date) && e.Window().Contains(window) {
			return nil
		}
	}

	// 4. Weekly template coverage.
	regulars, err := r.calendar.ListRegular(ctx, req.DoctorID, req.Date.Weekday())
	if err != nil {
		return err
	}
	var windows []string
	for _, s := range regulars {
		if s.Window().Contains(window) {
			return nil
		}
		windows = append(windows, fmt.Sprintf("%s to %s", s.Start, s.End))
	}

	// 5. Reasoned rejection: distinguish "no attendance that day" from
	// "attends, but not at that hour".
	if len(windows) == 0 {
		return &SlotUnavailableError{Reason: fmt.Sprintf(
			"doctor %s has no schedule configured for %s",
			req.DoctorID, WeekdayName(req.Date.Weekday()))}
	}
	return &SlotUnavailableError{Reason: fmt.Sprintf(
		"requested time %s is outside doctor %s's configured hours (%s) on %s",
		req.Time, req.DoctorID, strings.Join(windows, ", "), WeekdayName(req.Date.Weekday()))}
}

// EnumerateSlots lists the open bookable slots for a doctor over the date
// range [from, to], both endpoints inclusive. Weekly templates are tiled by
// their slot duration; available exceptions are tiled by the doctor's
// regular duration for the same specialty, falling back to the default.
// Slots covered by a blackout or overlapping an occupying appointment are
// removed. The result is deduplicated and ordered by date, time, specialty.
func (r *Resolver) EnumerateSlots(ctx context.Context, doctorID string, from, to Date) ([]Slot, error) {
	if to.Before(from) {
		return nil, &ValidationError{Field: "date range", Reason: fmt.Sprintf("end %s precedes start %s", to, from)}
	}

	regulars, err := r.calendar.ListRegular(ctx, doctorID, 0)
	if err != nil {
		return nil, err
	}
	exceptions, err := r.calendar.ListExceptionalCovering(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	occupying, err := r.appointments.ListOccupying(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[int][]RegularSchedule)
	durationBySpecialty := make(map[int]int)
	for _, s := range regulars {
		byWeekday[s.Weekday] = append(byWeekday[s.Weekday], s)
		if _, ok := durationBySpecialty[s.SpecialtyID]; !ok && s.SlotDuration > 0 {
			durationBySpecialty[s.SpecialtyID] = s.SlotDuration
		}
	}
	busyByDate := make(map[Date][]Appointment)
	for _, a := range occupying {
		busyByDate[a.Date] = append(busyByDate[a.Date], a)
	}

	seen := make(map[SlotKey]struct{})
	var slots []Slot
	addTiled := func(day Date, specialtyID int, window Interval, step, branchID int) {
		if step <= 0 {
			return
		}
		for start := window.Start; start.Add(step) <= window.End; start = start.Add(step) {
			s := Slot{Date: day, Time: start, DoctorID: doctorID, SpecialtyID: specialtyID, Duration: step, BranchID: branchID}
			if _, dup := seen[s.Key()]; dup {
				continue
			}
			if r.blocked(s, exceptions, busyByDate[day]) {
				continue
			}
			seen[s.Key()] = struct{}{}
			slots = append(slots, s)
		}
	}

	for day := from; !day.After(to); day = day.AddDays(1) {
		for _, s := range byWeekday[day.Weekday()] {
			addTiled(day, s.SpecialtyID, s.Window(), s.SlotDuration, s.BranchID)
		}
		for _, e := range exceptions {
			if !e.Available || !e.CoversDate(day) {
				continue
			}
			step, ok := durationBySpecialty[e.SpecialtyID]
			if !ok {
				step = DefaultExceptionalSlotDuration
			}
			addTiled(day, e.SpecialtyID, e.Window(), step, e.BranchID)
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.SpecialtyID < b.SpecialtyID
	})
	return slots, nil
}

func (r *Resolver) blocked(s Slot, exceptions []ExceptionalSchedule, busy []Appointment) bool {
	window := Interval{Start: s.Time, End: s.Time.Add(s.Duration)}
	for _, e := range exceptions {
		if !e.Available && e.CoversDate(s.Date) && e.Window().Overlaps(window) {
			return true
		}
	}
	for _, a := range busy {
		if a.Window().Overlaps(window) {
			return true
		}
	}
	return false
}
