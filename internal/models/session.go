package models

import "time"

// User roles carried on sessions and checked by lifecycle transitions.
const (
	RoleWorker     = "worker"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

// Session represents an authenticated user session.
type Session struct {
	ID           string                 `json:"id" db:"id"`
	UserID       string                 `json:"userId" db:"user_id"`
	Role         string                 `json:"role" db:"role"`
	Token        string                 `json:"token" db:"token"`
	DeviceInfo   string                 `json:"deviceInfo,omitempty" db:"device_info"`
	IPAddress    string                 `json:"ipAddress,omitempty" db:"ip_address"`
	CreatedAt    time.Time              `json:"createdAt" db:"created_at"`
	ExpiresAt    time.Time              `json:"expiresAt" db:"expires_at"`
	LastActivity time.Time              `json:"lastActivity" db:"last_activity"`
	IsActive     bool                   `json:"isActive" db:"is_active"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// IsExpired checks if session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UpdateActivity updates the last activity timestamp
func (s *Session) UpdateActivity() {
	s.LastActivity = time.Now()
}
