// internal/models/consultant.go
package models

import "time"

// Consultant represents a consultant who can accept consultation requests.
type Consultant struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	Specialties []string  `json:"specialties,omitempty" db:"specialties"`
	Regions     []string  `json:"regions,omitempty" db:"regions"`
	Languages   []string  `json:"languages,omitempty" db:"languages"`
	Active      bool      `json:"active" db:"active"`
	Rating      float64   `json:"rating,omitempty" db:"rating"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
