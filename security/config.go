package security

import (
	"fmt"
	"time"
)

// Day is the unit credential ages are reported in.
const Day = 24 * time.Hour

// Config is the scoring policy. The weights are tunable, not protocol.
type Config struct {
	// FreshWithin is the age below which a credential is fresh.
	// Default: 60 days
	FreshWithin time.Duration

	// StaleAfter is the age from which a credential is stale.
	// Default: 180 days
	StaleAfter time.Duration

	// AgeWeight scales the age penalty: aging keys count half, stale keys fully.
	// Default: 50
	AgeWeight float64

	// ErrorWeight scales the fraction of erroring keys.
	// Default: 20
	ErrorWeight float64

	// BasePenalty is subtracted from every non-empty set.
	// Default: 15
	BasePenalty float64

	// FreshBonus scales the fraction of fresh keys net of errors.
	// Default: 30
	FreshBonus float64

	// Now is the reference time for ages.
	// Default: time.Now
	Now func() time.Time
}

// DefaultConfig returns the standard scoring policy.
func DefaultConfig() Config {
	return Config{
		FreshWithin: 60 * Day,
		StaleAfter:  180 * Day,
		AgeWeight:   50,
		ErrorWeight: 20,
		BasePenalty: 15,
		FreshBonus:  30,
		Now:         time.Now,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FreshWithin <= 0 {
		c.FreshWithin = d.FreshWithin
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = d.StaleAfter
	}
	// All-zero weights mean the default policy.
	if c.AgeWeight == 0 && c.ErrorWeight == 0 && c.BasePenalty == 0 && c.FreshBonus == 0 {
		c.AgeWeight, c.ErrorWeight, c.BasePenalty, c.FreshBonus = d.AgeWeight, d.ErrorWeight, d.BasePenalty, d.FreshBonus
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Validate reports whether the policy is usable once defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.FreshWithin >= c.StaleAfter {
		return fmt.Errorf("%w: fresh_within (%s) must be shorter than stale_after (%s)", ErrInvalidConfig, c.FreshWithin, c.StaleAfter)
	}
	if c.AgeWeight < 0 || c.ErrorWeight < 0 || c.BasePenalty < 0 || c.FreshBonus < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	}
	return nil
}
