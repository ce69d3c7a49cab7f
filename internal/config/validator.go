package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a five-field cron expression
// ("minute hour day month weekday") with the robfig/cron/v3 parser.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is greater than zero.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateSecret enforces a minimum length and rejects common weak values.
func ValidateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("must be set")
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("must be at least %d characters", MinSecretLength)
	}
	lower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Trim(lower, "0123456789") == weak || strings.Repeat(weak, len(lower)/max(len(weak), 1)) == lower {
			return fmt.Errorf("must not be a common weak value")
		}
	}
	return nil
}
