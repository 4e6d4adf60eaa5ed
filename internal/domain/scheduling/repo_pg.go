package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/pagination"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

const uniqueViolation = "23505"

// =========== Calendar Repository ===========

type calendarRepoPG struct{ pool *pgxpool.Pool }

func NewCalendarRepoPG(pool *pgxpool.Pool) CalendarRepository { return &calendarRepoPG{pool: pool} }

func (r *calendarRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const regularCols = `doctor_id, specialty_id, weekday, start_minutes, end_minutes, slot_duration, branch_id`

func scanRegular(row pgx.Row) (RegularSchedule, error) {
	var s RegularSchedule
	var start, end int
	err := row.Scan(&s.DoctorID, &s.SpecialtyID, &s.Weekday, &start, &end, &s.SlotDuration, &s.BranchID)
	s.Start, s.End = TimeOfDay(start), TimeOfDay(end)
	return s, err
}

func (r *calendarRepoPG) CreateRegular(ctx context.Context, s RegularSchedule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO regular_schedule (doctor_id, specialty_id, weekday, start_minutes, end_minutes, slot_duration, branch_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.DoctorID, s.SpecialtyID, s.Weekday, int(s.Start), int(s.End), s.SlotDuration, s.BranchID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &ValidationError{Field: "schedule", Reason: "an identical weekly template already exists"}
	}
	return err
}

func (r *calendarRepoPG) DeleteRegular(ctx context.Context, key RegularScheduleKey) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM regular_schedule
		WHERE doctor_id = $1 AND specialty_id = $2 AND weekday = $3 AND start_minutes = $4`,
		key.DoctorID, key.SpecialtyID, key.Weekday, int(key.Start))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "regular schedule", ID: fmt.Sprintf("%s/%d/%d/%s", key.DoctorID, key.SpecialtyID, key.Weekday, key.Start)}
	}
	return nil
}

func (r *calendarRepoPG) ListRegular(ctx context.Context, doctorID string, weekday int) ([]RegularSchedule, error) {
	query := `SELECT ` + regularCols + ` FROM regular_schedule WHERE doctor_id = $1`
	args := []interface{}{doctorID}
	if weekday != 0 {
		query += ` AND weekday = $2`
		args = append(args, weekday)
	}
	query += ` ORDER BY weekday, start_minutes`
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RegularSchedule
	for rows.Next() {
		s, err := scanRegular(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const exceptionalCols = `doctor_id, specialty_id, start_date, end_date, start_minutes, end_minutes, available, reason, branch_id`

func scanExceptional(row pgx.Row) (ExceptionalSchedule, error) {
	var e ExceptionalSchedule
	var sd, ed time.Time
	var start, end int
	err := row.Scan(&e.DoctorID, &e.SpecialtyID, &sd, &ed, &start, &end, &e.Available, &e.Reason, &e.BranchID)
	e.StartDate, e.EndDate = DateOf(sd), DateOf(ed)
	e.Start, e.End = TimeOfDay(start), TimeOfDay(end)
	return e, err
}

func (r *calendarRepoPG) CreateExceptional(ctx context.Context, e ExceptionalSchedule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO exceptional_schedule (doctor_id, specialty_id, start_date, end_date,
			start_minutes, end_minutes, available, reason, branch_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.DoctorID, e.SpecialtyID, e.StartDate.Time(), e.EndDate.Time(),
		int(e.Start), int(e.End), e.Available, e.Reason, e.BranchID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &ValidationError{Field: "schedule", Reason: "an identical exception already exists"}
	}
	return err
}

func (r *calendarRepoPG) DeleteExceptional(ctx context.Context, key ExceptionalScheduleKey) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM exceptional_schedule
		WHERE doctor_id = $1 AND specialty_id = $2 AND start_date = $3 AND start_minutes = $4`,
		key.DoctorID, key.SpecialtyID, key.StartDate.Time(), int(key.Start))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "exceptional schedule", ID: fmt.Sprintf("%s/%d/%s/%s", key.DoctorID, key.SpecialtyID, key.StartDate, key.Start)}
	}
	return nil
}

func (r *calendarRepoPG) ListExceptional(ctx context.Context, doctorID string) ([]ExceptionalSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+exceptionalCols+` FROM exceptional_schedule
		WHERE doctor_id = $1 ORDER BY start_date, start_minutes`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExceptional(rows)
}

func (r *calendarRepoPG) ListExceptionalCovering(ctx context.Context, doctorID string, from, to Date) ([]ExceptionalSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+exceptionalCols+` FROM exceptional_schedule
		WHERE doctor_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date, start_minutes`,
		doctorID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExceptional(rows)
}

func collectExceptional(rows pgx.Rows) ([]ExceptionalSchedule, error) {
	var items []ExceptionalSchedule
	for rows.Next() {
		e, err := scanExceptional(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `a.appt_date, a.start_minutes, a.patient_id, a.doctor_id, a.specialty_id,
	a.status_id, s.name, a.duration, a.reason, a.diagnosis, a.room_number, a.branch_id`

const apptFrom = ` FROM appointment a JOIN appointment_status s ON s.id = a.status_id`

func scanAppt(row pgx.Row) (Appointment, error) {
	var a Appointment
	var date time.Time
	var start int
	var status string
	err := row.Scan(&date, &start, &a.PatientID, &a.DoctorID, &a.SpecialtyID,
		&a.StatusID, &status, &a.Duration, &a.Reason, &a.Diagnosis, &a.RoomNumber, &a.BranchID)
	a.Date = DateOf(date)
	a.Time = TimeOfDay(start)
	a.Status = Status(status)
	return a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (appt_date, start_minutes, patient_id, doctor_id, specialty_id,
			status_id, duration, reason, diagnosis, room_number, branch_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.Date.Time(), int(a.Time), a.PatientID, a.DoctorID, a.SpecialtyID,
		a.StatusID, a.Duration, a.Reason, a.Diagnosis, a.RoomNumber, a.BranchID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &SlotUnavailableError{Reason: fmt.Sprintf(
			"patient %d already has an appointment at %s %s", a.PatientID, a.Date, a.Time)}
	}
	return err
}

func (r *appointmentRepoPG) GetByKey(ctx context.Context, key AppointmentKey) (*Appointment, error) {
	a, err := scanAppt(r.conn(ctx).QueryRow(ctx, `
		SELECT `+apptCols+apptFrom+`
		WHERE a.appt_date = $1 AND a.start_minutes = $2 AND a.patient_id = $3`,
		key.Date.Time(), int(key.Time), key.PatientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status_id=$4, duration=$5, reason=$6, diagnosis=$7,
			room_number=$8, branch_id=$9, updated_at=NOW()
		WHERE appt_date = $1 AND start_minutes = $2 AND patient_id = $3`,
		a.Date.Time(), int(a.Time), a.PatientID,
		a.StatusID, a.Duration, a.Reason, a.Diagnosis, a.RoomNumber, a.BranchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "appointment", ID: a.Key().String()}
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, key AppointmentKey) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM appointment WHERE appt_date = $1 AND start_minutes = $2 AND patient_id = $3`,
		key.Date.Time(), int(key.Time), key.PatientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "appointment", ID: key.String()}
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, p pagination.Params) ([]Appointment, int, error) {
	return r.list(ctx, ``, nil, p)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID string, p pagination.Params) ([]Appointment, int, error) {
	return r.list(ctx, ` WHERE a.doctor_id = $1`, []interface{}{doctorID}, p)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int, p pagination.Params) ([]Appointment, int, error) {
	return r.list(ctx, ` WHERE a.patient_id = $1`, []interface{}{patientID}, p)
}

func (r *appointmentRepoPG) list(ctx context.Context, where string, args []interface{}, p pagination.Params) ([]Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY a.appt_date DESC, a.start_minutes DESC LIMIT $%d OFFSET $%d`,
		apptCols, apptFrom, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) ListOccupying(ctx context.Context, doctorID string, from, to Date) ([]Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+apptFrom+`
		WHERE a.doctor_id = $1 AND a.appt_date BETWEEN $2 AND $3 AND s.name = ANY($4)
		ORDER BY a.appt_date, a.start_minutes`,
		doctorID, from.Time(), to.Time(), occupyingStatusNames())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListUpcoming(ctx context.Context, date Date, from, to TimeOfDay) ([]UpcomingAppointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+`, p.full_name, p.email, p.phone, d.full_name
		`+apptFrom+`
		JOIN patient p ON p.id = a.patient_id
		JOIN doctor d ON d.license_number = a.doctor_id
		WHERE a.appt_date = $1 AND a.start_minutes >= $2 AND a.start_minutes < $3 AND s.name = ANY($4)
		ORDER BY a.start_minutes`,
		date.Time(), int(from), int(to), occupyingStatusNames())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UpcomingAppointment
	for rows.Next() {
		var u UpcomingAppointment
		var d time.Time
		var start int
		var status string
		if err := rows.Scan(&d, &start, &u.PatientID, &u.DoctorID, &u.SpecialtyID,
			&u.StatusID, &status, &u.Duration, &u.Reason, &u.Diagnosis, &u.RoomNumber, &u.BranchID,
			&u.PatientName, &u.PatientEmail, &u.PatientPhone, &u.DoctorName); err != nil {
			return nil, err
		}
		u.Date = DateOf(d)
		u.Time = TimeOfDay(start)
		u.Status = Status(status)
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListAttended(ctx context.Context, doctorID string, from, to Date) ([]AttendedVisit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+`, p.full_name
		`+apptFrom+`
		JOIN patient p ON p.id = a.patient_id
		WHERE a.doctor_id = $1 AND a.appt_date BETWEEN $2 AND $3 AND s.name = ANY($4)
		ORDER BY a.appt_date, a.start_minutes`,
		doctorID, from.Time(), to.Time(), attendedStatusNames())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttendedVisit
	for rows.Next() {
		var v AttendedVisit
		var d time.Time
		var start int
		var status string
		if err := rows.Scan(&d, &start, &v.PatientID, &v.DoctorID, &v.SpecialtyID,
			&v.StatusID, &status, &v.Duration, &v.Reason, &v.Diagnosis, &v.RoomNumber, &v.BranchID,
			&v.PatientName); err != nil {
			return nil, err
		}
		v.Date = DateOf(d)
		v.Time = TimeOfDay(start)
		v.Status = Status(status)
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) CountByStatus(ctx context.Context, doctorID string, from, to Date) (map[Status]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.name, COUNT(*)`+apptFrom+`
		WHERE a.doctor_id = $1 AND a.appt_date BETWEEN $2 AND $3
		GROUP BY s.name`,
		doctorID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[Status]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[Status(name)] = n
	}
	return counts, rows.Err()
}

func occupyingStatusNames() []string {
	return []string{string(StatusPending), string(StatusConfirmed), string(StatusAnnounced)}
}

// =========== Status Repository ===========

type statusRepoPG struct{ pool *pgxpool.Pool }

func NewStatusRepoPG(pool *pgxpool.Pool) StatusRepository { return &statusRepoPG{pool: pool} }

func (r *statusRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *statusRepoPG) IDForName(ctx context.Context, s Status) (int, error) {
	var id int
	err := r.conn(ctx).QueryRow(ctx, `SELECT id FROM appointment_status WHERE name = $1`, string(s)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &ConfigError{Missing: fmt.Sprintf("appointment status %q is not seeded", s)}
	}
	return id, err
}

func (r *statusRepoPG) NameForID(ctx context.Context, id int) (Status, error) {
	var name string
	err := r.conn(ctx).QueryRow(ctx, `SELECT name FROM appointment_status WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &ConfigError{Missing: fmt.Sprintf("appointment status id %d is not seeded", id)}
	}
	return Status(name), err
}
