// internal/workers/consultation/match-consultant/config.go
package matchconsultant

import "time"

type Config struct {
	Timeout       time.Duration
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		MaxCandidates: 5,
	}
}
