// internal/eligibility/evaluate.go
//
// Package eligibility evaluates applicant profiles against support program
// criteria. Evaluate is a total function: it never errors and never blocks,
// so callers can run it against a whole program list in one pass.
package eligibility

import (
	"fmt"
	"strings"
	"time"

	"consultation-workers/internal/models"
)

// Criterion labels, in evaluation order.
const (
	CriterionVisa       = "visa_type"
	CriterionRegion     = "region"
	CriterionAge        = "age"
	CriterionExperience = "work_experience"
	CriterionPeriod     = "application_period"
)

// Config holds the universal age band. The band applies to every program;
// it is policy, not program data.
type Config struct {
	AgeMin int
	AgeMax int
}

// DefaultConfig matches the working-age band used across the portal.
var DefaultConfig = Config{AgeMin: 18, AgeMax: 65}

// Evaluator evaluates eligibility profiles against program criteria.
type Evaluator struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Evaluator {
	if cfg.AgeMin == 0 && cfg.AgeMax == 0 {
		cfg = DefaultConfig
	}
	return &Evaluator{cfg: cfg, now: time.Now}
}

// Evaluate checks the profile against the program and AND-aggregates the
// evaluated criteria. A profile field that is unset is skipped entirely:
// it contributes no result and cannot fail the verdict. Callers that need
// strict eligibility must populate every field before evaluating.
func (e *Evaluator) Evaluate(program *models.SupportProgram, profile *models.EligibilityProfile) *models.EligibilityVerdict {
	verdict := &models.EligibilityVerdict{
		ProgramID: program.ID,
		UserID:    profile.UserID,
		Eligible:  true,
		Criteria:  []models.CriterionResult{},
	}

	if r, ok := e.checkVisa(program, profile); ok {
		verdict.Criteria = append(verdict.Criteria, r)
	}
	if r, ok := e.checkRegion(program, profile); ok {
		verdict.Criteria = append(verdict.Criteria, r)
	}
	if r, ok := e.checkAge(profile); ok {
		verdict.Criteria = append(verdict.Criteria, r)
	}
	if r, ok := checkExperience(profile); ok {
		verdict.Criteria = append(verdict.Criteria, r)
	}
	if r, ok := e.checkPeriod(program); ok {
		verdict.Criteria = append(verdict.Criteria, r)
	}

	for _, r := range verdict.Criteria {
		if !r.Passed {
			verdict.Eligible = false
		}
	}
	return verdict
}

// checkVisa passes when the profile's visa type is in the program's list,
// or when the program lists none (no restriction). The generic "other"
// selection cannot be judged and is skipped.
func (e *Evaluator) checkVisa(program *models.SupportProgram, profile *models.EligibilityProfile) (models.CriterionResult, bool) {
	if profile.VisaType == "" || profile.VisaType == models.VisaTypeOther {
		return models.CriterionResult{}, false
	}
	r := models.CriterionResult{Label: CriterionVisa, Observed: profile.VisaType}
	if len(program.EligibleVisaTypes) == 0 {
		r.Passed = true
		return r, true
	}
	for _, v := range program.EligibleVisaTypes {
		if normalizeVisa(v) == normalizeVisa(profile.VisaType) {
			r.Passed = true
			break
		}
	}
	return r, true
}

// checkRegion passes when the program is nationwide, when both labels
// resolve to the same province code, or (for labels outside the code
// table) when one label textually contains the other.
func (e *Evaluator) checkRegion(program *models.SupportProgram, profile *models.EligibilityProfile) (models.CriterionResult, bool) {
	if profile.Region == "" {
		return models.CriterionResult{}, false
	}
	r := models.CriterionResult{Label: CriterionRegion, Observed: profile.Region}
	location := strings.TrimSpace(program.Location)
	switch {
	case location == "" || location == models.NationwideLocation:
		r.Passed = true
	case RegionCode(location) != "" && RegionCode(location) == RegionCode(profile.Region):
		r.Passed = true
	case strings.Contains(location, profile.Region) || strings.Contains(profile.Region, location):
		r.Passed = true
	}
	return r, true
}

// checkAge applies the universal band regardless of program.
func (e *Evaluator) checkAge(profile *models.EligibilityProfile) (models.CriterionResult, bool) {
	if profile.Age == nil {
		return models.CriterionResult{}, false
	}
	age := *profile.Age
	return models.CriterionResult{
		Label:    CriterionAge,
		Observed: fmt.Sprintf("%d", age),
		Passed:   age >= e.cfg.AgeMin && age <= e.cfg.AgeMax,
	}, true
}

// checkExperience is advisory only. It is recorded for display but always
// passes, so it can never flip the verdict.
func checkExperience(profile *models.EligibilityProfile) (models.CriterionResult, bool) {
	if profile.ExperienceBand == "" {
		return models.CriterionResult{}, false
	}
	return models.CriterionResult{
		Label:    CriterionExperience,
		Observed: profile.ExperienceBand,
		Passed:   true,
	}, true
}

// checkPeriod fails once the program's application deadline has passed.
// Programs without a deadline are open-ended and are not evaluated.
func (e *Evaluator) checkPeriod(program *models.SupportProgram) (models.CriterionResult, bool) {
	if program.Deadline == nil {
		return models.CriterionResult{}, false
	}
	return models.CriterionResult{
		Label:    CriterionPeriod,
		Observed: program.Deadline.Format("2006-01-02"),
		Passed:   !e.now().After(*program.Deadline),
	}, true
}

func normalizeVisa(v string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), " ", ""))
}
