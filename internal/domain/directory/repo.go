package directory

import (
	"context"

	"github.com/clinic/clinic/pkg/pagination"
)

type DoctorRepository interface {
	Create(ctx context.Context, d Doctor) error
	GetByLicense(ctx context.Context, licenseNumber string) (*Doctor, error)
	Update(ctx context.Context, d Doctor) error
	Delete(ctx context.Context, licenseNumber string) error
	List(ctx context.Context, p pagination.Params) ([]Doctor, int, error)
	Exists(ctx context.Context, licenseNumber string) (bool, error)
}

type PatientRepository interface {
	// Create assigns the new patient's ID.
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int) (*Patient, error)
	Update(ctx context.Context, p Patient) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, p pagination.Params) ([]Patient, int, error)
	Exists(ctx context.Context, id int) (bool, error)
}

type SpecialtyRepository interface {
	Create(ctx context.Context, s *Specialty) error
	GetByID(ctx context.Context, id int) (*Specialty, error)
	List(ctx context.Context) ([]Specialty, error)
	Delete(ctx context.Context, id int) error
}

type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id int) (*Branch, error)
	List(ctx context.Context) ([]Branch, error)
	Delete(ctx context.Context, id int) error
}

type RoomRepository interface {
	Create(ctx context.Context, r Room) error
	ListByBranch(ctx context.Context, branchID int) ([]Room, error)
	Delete(ctx context.Context, number, branchID int) error
}
