package moderation

import (
	"errors"
	"fmt"
	"time"
)

// Fail-safe behavior when zero providers return successfully.
const (
	FailClosed = "closed"
	FailOpen   = "open"
)

var (
	ErrNoProvidersConfigured = errors.New("moderation: no classifier providers configured")
	ErrUnknownProvider       = errors.New("moderation: unknown classifier provider")
)

// Operator-supplied moderation policy. Consumed, not owned, by the engine;
// constants here are tunable policy, not fixed law.
type Policy struct {
	// enabled provider names, resolved against the Registry at startup
	Providers []string
	// per-category score thresholds in [0,1]; a score at or above the
	// threshold flags the content even if no provider set its own flag
	CategoryThresholds map[string]float64
	// how long decisions stay cached by fingerprint
	CacheTTL time.Duration
	// budget for a single provider call
	ProviderTimeout time.Duration
	// budget for the whole fan-out; slower providers are excluded
	EvaluateTimeout time.Duration
	// FailClosed (default) or FailOpen
	FailSafeMode string
}

func DefaultPolicy() Policy {
	return Policy{
		Providers: []string{},
		CategoryThresholds: map[string]float64{
			CategoryHate:       0.8,
			CategoryHarassment: 0.8,
			CategoryViolence:   0.8,
			CategorySexual:     0.8,
			CategorySpam:       0.7,
		},
		CacheTTL:        time.Hour,
		ProviderTimeout: 10 * time.Second,
		EvaluateTimeout: 15 * time.Second,
		FailSafeMode:    FailClosed,
	}
}

// Validate fails fast on configuration that would otherwise silently
// approve everything.
func (p *Policy) Validate() error {
	if len(p.Providers) == 0 {
		return ErrNoProvidersConfigured
	}
	for cat, thresh := range p.CategoryThresholds {
		if thresh < 0.0 || thresh > 1.0 {
			return fmt.Errorf("moderation: threshold for category %q out of range: %f", cat, thresh)
		}
	}
	if p.FailSafeMode != FailClosed && p.FailSafeMode != FailOpen {
		return fmt.Errorf("moderation: unknown fail-safe mode: %q", p.FailSafeMode)
	}
	if p.ProviderTimeout <= 0 || p.EvaluateTimeout <= 0 {
		return fmt.Errorf("moderation: timeouts must be positive")
	}
	return nil
}
