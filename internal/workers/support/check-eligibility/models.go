// internal/workers/support/check-eligibility/models.go
package checkeligibility

import "consultation-workers/internal/models"

type Input struct {
	ProgramID string                    `json:"programId"`
	Profile   models.EligibilityProfile `json:"profile"`
}

type Output struct {
	ProgramID string                   `json:"programId"`
	Eligible  bool                     `json:"eligible"`
	Criteria  []models.CriterionResult `json:"criteria"`
	CheckedAt string                   `json:"checkedAt"` // ISO 8601
}
