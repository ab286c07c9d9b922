// internal/workers/support/search-programs/models.go
package searchprograms

import (
	"consultation-workers/internal/models"
)

// Input selects and filters the program search.
type Input struct {
	Keywords string `json:"keywords,omitempty"`
	Category string `json:"category,omitempty"`
	Region   string `json:"region,omitempty"`
	VisaType string `json:"visaType,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

// Output carries the matching programs back into the workflow.
type Output struct {
	Programs   []models.SupportProgram `json:"programs"`
	TotalHits  int                     `json:"totalHits"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
	SearchedAt string                  `json:"searchedAt"`
}
