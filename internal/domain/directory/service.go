package directory

import (
	"context"
	"fmt"

	"github.com/clinic/clinic/pkg/pagination"
)

// ErrNotFound is returned for lookups of entities that do not exist.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrInvalid rejects malformed reference data.
type ErrInvalid struct {
	Reason string
}

func (e *ErrInvalid) Error() string { return e.Reason }

type Service struct {
	doctors     DoctorRepository
	patients    PatientRepository
	specialties SpecialtyRepository
	branches    BranchRepository
	rooms       RoomRepository
}

func NewService(
	doctors DoctorRepository,
	patients PatientRepository,
	specialties SpecialtyRepository,
	branches BranchRepository,
	rooms RoomRepository,
) *Service {
	return &Service{
		doctors:     doctors,
		patients:    patients,
		specialties: specialties,
		branches:    branches,
		rooms:       rooms,
	}
}

// DoctorExists satisfies the scheduling domain's doctor directory check.
func (s *Service) DoctorExists(ctx context.Context, licenseNumber string) (bool, error) {
	return s.doctors.Exists(ctx, licenseNumber)
}

// PatientExists satisfies the scheduling domain's patient directory check.
func (s *Service) PatientExists(ctx context.Context, id int) (bool, error) {
	return s.patients.Exists(ctx, id)
}

// -- Doctors --

func (s *Service) CreateDoctor(ctx context.Context, d Doctor) error {
	if d.LicenseNumber == "" {
		return &ErrInvalid{Reason: "license_number is required"}
	}
	if d.FullName == "" {
		return &ErrInvalid{Reason: "full_name is required"}
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, licenseNumber string) (*Doctor, error) {
	d, err := s.doctors.GetByLicense(ctx, licenseNumber)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &ErrNotFound{Resource: "doctor", ID: licenseNumber}
	}
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d Doctor) error {
	if d.LicenseNumber == "" {
		return &ErrInvalid{Reason: "license_number is required"}
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, licenseNumber string) error {
	return s.doctors.Delete(ctx, licenseNumber)
}

func (s *Service) ListDoctors(ctx context.Context, p pagination.Params) ([]Doctor, int, error) {
	return s.doctors.List(ctx, p)
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return &ErrInvalid{Reason: "full_name is required"}
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ErrNotFound{Resource: "patient", ID: fmt.Sprint(id)}
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p Patient) error {
	if p.ID <= 0 {
		return &ErrInvalid{Reason: "id is required"}
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, p pagination.Params) ([]Patient, int, error) {
	return s.patients.List(ctx, p)
}

// -- Specialties --

func (s *Service) CreateSpecialty(ctx context.Context, sp *Specialty) error {
	if sp.Name == "" {
		return &ErrInvalid{Reason: "name is required"}
	}
	return s.specialties.Create(ctx, sp)
}

func (s *Service) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	return s.specialties.List(ctx)
}

func (s *Service) DeleteSpecialty(ctx context.Context, id int) error {
	return s.specialties.Delete(ctx, id)
}

// -- Branches and Rooms --

func (s *Service) CreateBranch(ctx context.Context, b *Branch) error {
	if b.Name == "" {
		return &ErrInvalid{Reason: "name is required"}
	}
	return s.branches.Create(ctx, b)
}

func (s *Service) ListBranches(ctx context.Context) ([]Branch, error) {
	return s.branches.List(ctx)
}

func (s *Service) DeleteBranch(ctx context.Context, id int) error {
	return s.branches.Delete(ctx, id)
}

func (s *Service) CreateRoom(ctx context.Context, r Room) error {
	if r.Number <= 0 {
		return &ErrInvalid{Reason: "number must be positive"}
	}
	b, err := s.branches.GetByID(ctx, r.BranchID)
	if err != nil {
		return err
	}
	if b == nil {
		return &ErrNotFound{Resource: "branch", ID: fmt.Sprint(r.BranchID)}
	}
	return s.rooms.Create(ctx, r)
}

func (s *Service) ListRooms(ctx context.Context, branchID int) ([]Room, error) {
	return s.rooms.ListByBranch(ctx, branchID)
}

func (s *Service) DeleteRoom(ctx context.Context, number, branchID int) error {
	return s.rooms.Delete(ctx, number, branchID)
}
