// internal/workers/support/search-programs/config.go
package searchprograms

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}
