// internal/models/program.go
package models

import "time"

// NationwideLocation marks a program that is open regardless of the
// applicant's region.
const NationwideLocation = "전국"

// VisaTypeOther is the generic "other" visa selection. Profiles holding it
// cannot be judged against a program's visa list.
const VisaTypeOther = "기타"

// SupportProgram describes a government support program and its eligibility
// criteria. An empty EligibleVisaTypes set means no visa restriction.
type SupportProgram struct {
	ID                string                 `json:"id" db:"id"`
	Name              string                 `json:"name" db:"name"`
	Category          string                 `json:"category,omitempty" db:"category"`
	Agency            string                 `json:"agency,omitempty" db:"agency"`
	Description       string                 `json:"description,omitempty" db:"description"`
	EligibleVisaTypes []string               `json:"eligibleVisaTypes,omitempty" db:"eligible_visa_types"`
	Location          string                 `json:"location,omitempty" db:"location"`
	ApplicationURL    string                 `json:"applicationUrl,omitempty" db:"application_url"`
	Deadline          *time.Time             `json:"deadline,omitempty" db:"deadline"`
	Metadata          map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt         time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time              `json:"updatedAt" db:"updated_at"`
}

// EligibilityProfile is the applicant-side input to eligibility checks.
// Every field is optional; unset fields are simply not evaluated.
type EligibilityProfile struct {
	UserID         string `json:"userId"`
	VisaType       string `json:"visaType,omitempty"`
	Region         string `json:"region,omitempty"`
	Age            *int   `json:"age,omitempty"`
	ExperienceBand string `json:"experienceBand,omitempty"`
}

// CriterionResult records the outcome of one evaluated criterion.
type CriterionResult struct {
	Label    string `json:"label"`
	Observed string `json:"observedValue"`
	Passed   bool   `json:"passed"`
}

// EligibilityVerdict is the result of evaluating a profile against a
// program. Criteria holds only the criteria that were actually evaluated,
// in evaluation order; Eligible is the AND over them.
type EligibilityVerdict struct {
	ProgramID string            `json:"programId"`
	UserID    string            `json:"userId"`
	Eligible  bool              `json:"eligible"`
	Criteria  []CriterionResult `json:"criteria"`
}
