// internal/workers/consultation/match-consultant/models.go
package matchconsultant

type Input struct {
	ConsultationID string `json:"consultationId"`
	Specialty      string `json:"specialty,omitempty"`
	MaxCandidates  int    `json:"maxCandidates,omitempty"`
}

type Candidate struct {
	ConsultantID string   `json:"consultantId"`
	Name         string   `json:"name"`
	Rating       float64  `json:"rating"`
	Languages    []string `json:"languages,omitempty"`
}

type Output struct {
	ConsultationID string      `json:"consultationId"`
	Candidates     []Candidate `json:"candidates"`
	Count          int         `json:"count"`
}
