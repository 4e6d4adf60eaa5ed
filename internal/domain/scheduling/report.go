package scheduling

import "context"

// AttendedVisit is one completed appointment joined with the patient's
// name, as listed by attendance reports. Finalized visits count as
// attended: finalization only follows attendance.
type AttendedVisit struct {
	Appointment
	PatientName string `json:"patient_name"`
}

// AttendanceReport summarizes visit outcomes for a doctor over a date
// range. Attended includes finalized visits.
type AttendanceReport struct {
	DoctorID  string `json:"doctor_id"`
	From      Date   `json:"from"`
	To        Date   `json:"to"`
	Attended  int    `json:"attended"`
	Absent    int    `json:"absent"`
	Cancelled int    `json:"cancelled"`
	Total     int    `json:"total"`
}

// attendedStatusNames are the statuses a visit can hold after the patient
// showed up.
func attendedStatusNames() []string {
	return []string{string(StatusAttended), string(StatusFinalized)}
}

// AttendedPatients lists the visits a doctor completed on days in
// [from, to], both endpoints inclusive, ordered by date and time.
func (s *Service) AttendedPatients(ctx context.Context, doctorID string, from, to Date) ([]AttendedVisit, error) {
	if err := s.checkReportRange(ctx, doctorID, from, to); err != nil {
		return nil, err
	}
	return s.appointments.ListAttended(ctx, doctorID, from, to)
}

// AttendanceStats aggregates visit outcome counts for a doctor on days in
// [from, to]. Total spans every status, including still-open bookings.
func (s *Service) AttendanceStats(ctx context.Context, doctorID string, from, to Date) (*AttendanceReport, error) {
	if err := s.checkReportRange(ctx, doctorID, from, to); err != nil {
		return nil, err
	}
	counts, err := s.appointments.CountByStatus(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	report := &AttendanceReport{DoctorID: doctorID, From: from, To: to}
	for status, n := range counts {
		report.Total += n
		switch status {
		case StatusAttended, StatusFinalized:
			report.Attended += n
		case StatusAbsent:
			report.Absent += n
		case StatusCancelled:
			report.Cancelled += n
		}
	}
	return report, nil
}

func (s *Service) checkReportRange(ctx context.Context, doctorID string, from, to Date) error {
	ok, err := s.doctors.DoctorExists(ctx, doctorID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: "doctor", ID: doctorID}
	}
	if to.Before(from) {
		return &ValidationError{Field: "date range", Reason: "end precedes start"}
	}
	return nil
}
