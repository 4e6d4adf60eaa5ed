package directory

import (
	"context"
	"errors"

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `license_number, full_name, email, phone`

func (r *doctorRepoPG) Create(ctx context.Context, d Doctor) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctor (license_number, full_name, email, phone)
		VALUES ($1,$2,$3,$4)`,
		d.LicenseNumber, d.FullName, d.Email, d.Phone)
	if err != nil {
		return err
	}
	for _, specID := range d.SpecialtyIDs {
		if _, err := conn(ctx, r.pool).Exec(ctx, `
			INSERT INTO doctor_specialty (doctor_id, specialty_id) VALUES ($1,$2)
			ON CONFLICT DO NOTHING`, d.LicenseNumber, specID); err != nil {
			return err
		}
	}
	return nil
}

func (r *doctorRepoPG) GetByLicense(ctx context.Context, licenseNumber string) (*Doctor, error) {
	var d Doctor
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE license_number = $1`, licenseNumber).
		Scan(&d.LicenseNumber, &d.FullName, &d.Email, &d.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT specialty_id FROM doctor_specialty WHERE doctor_id = $1 ORDER BY specialty_id`, licenseNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		d.SpecialtyIDs = append(d.SpecialtyIDs, id)
	}
	return &d, rows.Err()
}

func (r *doctorRepoPG) Update(ctx context.Context, d Doctor) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE doctor SET full_name=$2, email=$3, phone=$4 WHERE license_number = $1`,
		d.LicenseNumber, d.FullName, d.Email, d.Phone)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, licenseNumber string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM doctor WHERE license_number = $1`, licenseNumber)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, p pagination.Params) ([]Doctor, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY full_name LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.LicenseNumber, &d.FullName, &d.Email, &d.Phone); err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) Exists(ctx context.Context, licenseNumber string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctor WHERE license_number = $1)`, licenseNumber).Scan(&exists)
	return exists, err
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, full_name, document_number, email, phone`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO patient (full_name, document_number, email, phone)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		p.FullName, p.DocumentNumber, p.Email, p.Phone).Scan(&p.ID)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	var p Patient
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id).
		Scan(&p.ID, &p.FullName, &p.DocumentNumber, &p.Email, &p.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p Patient) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patient SET full_name=$2, document_number=$3, email=$4, phone=$5 WHERE id = $1`,
		p.ID, p.FullName, p.DocumentNumber, p.Email, p.Phone)
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id int) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, p pagination.Params) ([]Patient, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY full_name LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Patient
	for rows.Next() {
		var pat Patient
		if err := rows.Scan(&pat.ID, &pat.FullName, &pat.DocumentNumber, &pat.Email, &pat.Phone); err != nil {
			return nil, 0, err
		}
		items = append(items, pat)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialtyRepoPG(pool *pgxpool.Pool) SpecialtyRepository { return &specialtyRepoPG{pool: pool} }

func (r *specialtyRepoPG) Create(ctx context.Context, s *Specialty) error {
	return conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO specialty (name) VALUES ($1) RETURNING id`, s.Name).Scan(&s.ID)
}

func (r *specialtyRepoPG) GetByID(ctx context.Context, id int) (*Specialty, error) {
	var s Specialty
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name FROM specialty WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *specialtyRepoPG) List(ctx context.Context) ([]Specialty, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, name FROM specialty ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Specialty
	for rows.Next() {
		var s Specialty
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *specialtyRepoPG) Delete(ctx context.Context, id int) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM specialty WHERE id = $1`, id)
	return err
}

// =========== Branch Repository ===========

type branchRepoPG struct{ pool *pgxpool.Pool }

func NewBranchRepoPG(pool *pgxpool.Pool) BranchRepository { return &branchRepoPG{pool: pool} }

func (r *branchRepoPG) Create(ctx context.Context, b *Branch) error {
	return conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO branch (name, address) VALUES ($1,$2) RETURNING id`,
		b.Name, b.Address).Scan(&b.ID)
}

func (r *branchRepoPG) GetByID(ctx context.Context, id int) (*Branch, error) {
	var b Branch
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, address FROM branch WHERE id = $1`, id).Scan(&b.ID, &b.Name, &b.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *branchRepoPG) List(ctx context.Context) ([]Branch, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, name, address FROM branch ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *branchRepoPG) Delete(ctx context.Context, id int) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM branch WHERE id = $1`, id)
	return err
}

// =========== Room Repository ===========

type roomRepoPG struct{ pool *pgxpool.Pool }

func NewRoomRepoPG(pool *pgxpool.Pool) RoomRepository { return &roomRepoPG{pool: pool} }

func (r *roomRepoPG) Create(ctx context.Context, room Room) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO room (number, branch_id) VALUES ($1,$2)`, room.Number, room.BranchID)
	return err
}

func (r *roomRepoPG) ListByBranch(ctx context.Context, branchID int) ([]Room, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT number, branch_id FROM room WHERE branch_id = $1 ORDER BY number`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.Number, &room.BranchID); err != nil {
			return nil, err
		}
		items = append(items, room)
	}
	return items, rows.Err()
}

func (r *roomRepoPG) Delete(ctx context.Context, number, branchID int) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM room WHERE number = $1 AND branch_id = $2`, number, branchID)
	return err
}
