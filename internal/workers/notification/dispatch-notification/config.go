// internal/workers/notification/dispatch-notification/config.go
package dispatchnotification

import "time"

type Config struct {
	EmailEnabled     bool
	SMSEnabled       bool
	FromEmail        string
	AWSRegion        string
	TemplateRegistry string
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		FromEmail:    "no-reply@workvisit.kr",
		AWSRegion:    "ap-northeast-2",
		Timeout:      30 * time.Second,
	}
}
