package geospoof

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fwber/warden/geospoof/ipintel"
)

var ErrInvalidFix = errors.New("geospoof: invalid location fix")

// Engine computes spoof findings from location fixes. Evaluate is a pure
// function of its inputs and performs no I/O; it may be called concurrently
// without coordination. The caller supplies consistent prev/new fix
// ordering per user.
type Engine struct {
	Logger *slog.Logger
	Policy Policy
}

func NewEngine(logger *slog.Logger, policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		Logger: logger,
		Policy: policy,
	}, nil
}

// Evaluate scores one location update. prevFix and ipLoc are optional: with
// no previous fix there is no velocity check, with no IP location there is
// no cross-check. Findings are always emitted unconfirmed; confirmation is
// a later human verdict.
func (eng *Engine) Evaluate(userID string, newFix LocationFix, prevFix *LocationFix, ipLoc *ipintel.IpLocation) (*GeoSpoofFinding, error) {
	if err := validateCoords(newFix.Latitude, newFix.Longitude); err != nil {
		return nil, err
	}

	finding := &GeoSpoofFinding{
		UserID:     userID,
		Flags:      []string{},
		DetectedAt: time.Now().UTC(),
	}
	score := 0

	if prevFix != nil {
		score += eng.velocitySignal(finding, newFix, prevFix)
	}
	if ipLoc != nil {
		score += eng.ipSignals(finding, newFix, ipLoc)
	}

	finding.SuspicionScore = clampScore(score)
	return finding, nil
}

// velocitySignal computes travel distance and implied velocity since the
// previous fix, contributing up to VelocityMaxPoints. Non-monotonic
// timestamps or a too-short gap make the check non-evaluable; the distance
// is still recorded.
func (eng *Engine) velocitySignal(finding *GeoSpoofFinding, newFix LocationFix, prevFix *LocationFix) int {
	if err := validateCoords(prevFix.Latitude, prevFix.Longitude); err != nil {
		eng.Logger.Warn("skipping velocity check, previous fix invalid", "user", finding.UserID, "err", err)
		return 0
	}

	distKm := HaversineKm(prevFix.Latitude, prevFix.Longitude, newFix.Latitude, newFix.Longitude)
	finding.DistanceKm = int(math.Round(distKm))

	elapsed := newFix.ObservedAt.Sub(prevFix.ObservedAt)
	if elapsed <= 0 {
		eng.Logger.Warn("skipping velocity check, non-monotonic fix timestamps", "user", finding.UserID, "elapsed", elapsed)
		return 0
	}
	if elapsed < eng.Policy.MinElapsed {
		// near-instant fixes are GPS jitter, not travel
		return 0
	}

	velocity := distKm / elapsed.Hours()
	finding.VelocityKmh = int(math.Round(velocity))

	ceiling := eng.Policy.VelocityCeilingKmh
	if velocity <= ceiling {
		return 0
	}
	finding.Flags = append(finding.Flags, FlagHighVelocity)

	// linear above the ceiling, reaching the cap at 2x ceiling
	maxPts := float64(eng.Policy.VelocityMaxPoints)
	pts := maxPts * (velocity - ceiling) / ceiling
	return int(math.Min(maxPts, math.Ceil(pts)))
}

// ipSignals cross-checks the claimed fix against IP geolocation (up to
// IPMismatchMaxPoints) and adds the fixed VPN/datacenter contribution.
func (eng *Engine) ipSignals(finding *GeoSpoofFinding, newFix LocationFix, ipLoc *ipintel.IpLocation) int {
	score := 0

	ipDistKm := HaversineKm(newFix.Latitude, newFix.Longitude, ipLoc.Latitude, ipLoc.Longitude)
	finding.IPDistanceKm = int(math.Round(ipDistKm))

	threshold := eng.Policy.IPMismatchThresholdKm
	if ipDistKm > threshold {
		finding.Flags = append(finding.Flags, FlagIPMismatch)
		// linear beyond the agreement radius, reaching the cap at 5x
		maxPts := float64(eng.Policy.IPMismatchMaxPoints)
		pts := maxPts * (ipDistKm - threshold) / (4 * threshold)
		score += int(math.Min(maxPts, math.Ceil(pts)))
	}

	if ipLoc.IsVPN {
		finding.Flags = append(finding.Flags, FlagVPN)
	}
	if ipLoc.IsDataCenter {
		finding.Flags = append(finding.Flags, FlagDataCenter)
	}
	if ipLoc.IsVPN || ipLoc.IsDataCenter {
		score += eng.Policy.VPNPoints
	}

	return score
}

func validateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: coordinates out of range (%f, %f)", ErrInvalidFix, lat, lon)
	}
	return nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
