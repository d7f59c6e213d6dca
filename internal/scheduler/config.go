package scheduler

import (
	"time"

	"github.com/smallbiznis/counterreport/internal/config"
)

// Config controls the monthly royalty job.
type Config struct {
	// Schedule is a six-field cron spec (seconds first).
	Schedule string
	Presses  []string
	Timeout  time.Duration
	LockTTL  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Schedule: "0 0 6 1 * *",
		Timeout:  5 * time.Minute,
		LockTTL:  30 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Schedule: cfg.Reporting.RoyaltySchedule,
		Presses:  cfg.Reporting.RoyaltyPresses,
		Timeout:  cfg.Reporting.Timeout,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Schedule == "" {
		c.Schedule = defaults.Schedule
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.LockTTL < c.Timeout {
		c.LockTTL = c.Timeout
	}
	return c
}
