// Package directory holds the clinic's reference data: doctors, patients,
// specialties, branch locations and consultation rooms. It is thin CRUD;
// the scheduling domain consults it for existence checks.
package directory

// Doctor is identified by the medical license number issued to them.
type Doctor struct {
	LicenseNumber string `json:"license_number"`
	FullName      string `json:"full_name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	SpecialtyIDs  []int  `json:"specialty_ids,omitempty"`
}

type Patient struct {
	ID             int    `json:"id"`
	FullName       string `json:"full_name"`
	DocumentNumber string `json:"document_number,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

type Specialty struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Branch struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Room is identified by its number within a branch.
type Room struct {
	Number   int `json:"number"`
	BranchID int `json:"branch_id"`
}
