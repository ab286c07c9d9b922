// internal/workers/support/sync-programs/config.go
package syncprograms

import "time"

type Config struct {
	Timeout  time.Duration
	PageSize int
	MaxPages int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  2 * time.Minute,
		PageSize: 100,
		MaxPages: 50,
	}
}
