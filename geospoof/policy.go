package geospoof

import (
	"fmt"
	"time"
)

// Operator-supplied spoof-detection policy. The point weights are tunable
// heuristics, not probabilities; the additive capped design keeps the score
// monotonic in each independent signal.
type Policy struct {
	// fastest plausible travel; above this the velocity signal fires
	VelocityCeilingKmh float64
	// fixes closer together than this are too noisy for a velocity check
	MinElapsed time.Duration
	// GPS and IP geolocation should agree within this radius
	IPMismatchThresholdKm float64

	// score contributions, each capped independently
	VelocityMaxPoints     int
	IPMismatchMaxPoints   int
	VPNPoints             int
	FrequentChangesPoints int

	// findings at or above this score are worth persisting/counting
	SignificantScore int
	// findings at or above this score route the account to moderator review
	HighRiskScore int
	// significant findings per week before the frequency signal fires
	FrequentChangesPerWeek int
}

func DefaultPolicy() Policy {
	return Policy{
		VelocityCeilingKmh:     900,
		MinElapsed:             time.Minute,
		IPMismatchThresholdKm:  100,
		VelocityMaxPoints:      50,
		IPMismatchMaxPoints:    30,
		VPNPoints:              20,
		FrequentChangesPoints:  10,
		SignificantScore:       25,
		HighRiskScore:          70,
		FrequentChangesPerWeek: 10,
	}
}

func (p *Policy) Validate() error {
	if p.VelocityCeilingKmh <= 0 {
		return fmt.Errorf("geospoof: velocity ceiling must be positive: %f", p.VelocityCeilingKmh)
	}
	if p.IPMismatchThresholdKm <= 0 {
		return fmt.Errorf("geospoof: IP mismatch threshold must be positive: %f", p.IPMismatchThresholdKm)
	}
	if p.VelocityMaxPoints < 0 || p.IPMismatchMaxPoints < 0 || p.VPNPoints < 0 || p.FrequentChangesPoints < 0 {
		return fmt.Errorf("geospoof: point weights must be non-negative")
	}
	return nil
}
