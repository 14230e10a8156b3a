package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a patient account plus the clinical snapshot carried on the
// record. PasswordHash and VerificationToken never serialize to JSON.
type Patient struct {
	ID                uuid.UUID    `json:"id"`
	Email             string       `json:"email"`
	PasswordHash      string       `json:"-"`
	FirstName         string       `json:"firstName"`
	LastName          string       `json:"lastName"`
	DateOfBirth       *time.Time   `json:"dateOfBirth,omitempty"`
	Phone             *string      `json:"phone,omitempty"`
	Address           *string      `json:"address,omitempty"`
	Vitals            *Vitals      `json:"vitals,omitempty"`
	VisitSummary      *string      `json:"visitSummary,omitempty"`
	Diagnosis         *string      `json:"diagnosis,omitempty"`
	Treatment         *string      `json:"treatment,omitempty"`
	LabResults        []LabResult  `json:"labResults,omitempty"`
	Medications       []Medication `json:"medications,omitempty"`
	IsActive          bool         `json:"isActive"`
	IsVerified        bool         `json:"isVerified"`
	VerificationToken *string      `json:"-"`
	LastAccessDate    *time.Time   `json:"lastAccessDate,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Vitals is the most recent set of vital signs on record.
type Vitals struct {
	BloodPressure    string  `json:"bloodPressure,omitempty"`
	HeartRate        int     `json:"heartRate,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	Weight           float64 `json:"weight,omitempty"`
	Height           float64 `json:"height,omitempty"`
	RespiratoryRate  int     `json:"respiratoryRate,omitempty"`
	OxygenSaturation int     `json:"oxygenSaturation,omitempty"`
}

// LabResult is a single laboratory result attached to the record.
type LabResult struct {
	TestName       string     `json:"testName"`
	Result         string     `json:"result"`
	Unit           string     `json:"unit,omitempty"`
	ReferenceRange string     `json:"referenceRange,omitempty"`
	ResultDate     *time.Time `json:"resultDate,omitempty"`
}

// Medication is a prescribed medication on the record.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	PrescribedBy string `json:"prescribedBy,omitempty"`
}

// FullName returns "First Last".
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Summary is the compact patient view returned by registration and login.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	IsVerified bool      `json:"isVerified"`
}

func (p *Patient) Summary() Summary {
	return Summary{
		ID:         p.ID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		IsVerified: p.IsVerified,
	}
}
