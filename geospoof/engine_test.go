package geospoof

import (
	"log/slog"
	"testing"
	"time"

	"github.com/fwber/warden/geospoof/ipintel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	eng, err := NewEngine(slog.Default(), DefaultPolicy())
	require.NoError(t, err)
	return eng
}

func fixAt(lat, lon float64, at time.Time) LocationFix {
	return LocationFix{
		UserID:     "u1",
		Latitude:   lat,
		Longitude:  lon,
		Source:     SourceGPS,
		ObservedAt: at,
	}
}

func TestEvaluateImpossibleVelocity(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	now := time.Now()
	prev := fixAt(37.7749, -122.4194, now.Add(-10*time.Minute))
	cur := fixAt(40.7128, -74.0060, now)

	finding, err := eng.Evaluate("u1", cur, &prev, nil)
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagHighVelocity))
	assert.InDelta(4130, finding.DistanceKm, 15)
	assert.Greater(finding.VelocityKmh, 20000)
	assert.Equal(eng.Policy.VelocityMaxPoints, finding.SuspicionScore)
}

func TestEvaluateIdenticalFix(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	now := time.Now()
	prev := fixAt(37.7749, -122.4194, now.Add(-time.Second))
	cur := fixAt(37.7749, -122.4194, now)

	finding, err := eng.Evaluate("u1", cur, &prev, nil)
	require.NoError(t, err)
	assert.Empty(finding.Flags)
	assert.Equal(0, finding.SuspicionScore)
	assert.Equal(0, finding.DistanceKm)
}

func TestEvaluateVelocityMonotonic(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	// same route, shrinking travel time: score never decreases
	now := time.Now()
	cur := fixAt(40.7128, -74.0060, now)
	last := 0
	for _, gap := range []time.Duration{5 * time.Hour, 4 * time.Hour, 3 * time.Hour, 2 * time.Hour, time.Hour} {
		prev := fixAt(37.7749, -122.4194, now.Add(-gap))
		finding, err := eng.Evaluate("u1", cur, &prev, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(finding.SuspicionScore, last, gap.String())
		last = finding.SuspicionScore
	}
	assert.Equal(eng.Policy.VelocityMaxPoints, last)
}

func TestEvaluateNonMonotonicTimestamps(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	// previous fix observed after the new one: distance recorded, no velocity
	now := time.Now()
	prev := fixAt(37.7749, -122.4194, now.Add(time.Minute))
	cur := fixAt(40.7128, -74.0060, now)

	finding, err := eng.Evaluate("u1", cur, &prev, nil)
	require.NoError(t, err)
	assert.False(finding.HasFlag(FlagHighVelocity))
	assert.Equal(0, finding.SuspicionScore)
	assert.InDelta(4130, finding.DistanceKm, 15)
}

func TestEvaluateIPMismatchBoundary(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	cur := fixAt(0, 0, time.Now())

	// roughly 99km east along the equator: inside the agreement radius
	near := &ipintel.IpLocation{Latitude: 0, Longitude: 0.89}
	finding, err := eng.Evaluate("u1", cur, nil, near)
	require.NoError(t, err)
	assert.False(finding.HasFlag(FlagIPMismatch))
	assert.Equal(0, finding.SuspicionScore)

	// just past it
	far := &ipintel.IpLocation{Latitude: 0, Longitude: 0.92}
	finding, err = eng.Evaluate("u1", cur, nil, far)
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagIPMismatch))
	assert.Greater(finding.SuspicionScore, 0)

	// a continent away hits the cap
	veryFar := &ipintel.IpLocation{Latitude: 48.8566, Longitude: 2.3522}
	finding, err = eng.Evaluate("u1", cur, nil, veryFar)
	require.NoError(t, err)
	assert.Equal(eng.Policy.IPMismatchMaxPoints, finding.SuspicionScore)
}

func TestEvaluateVPNAndDatacenter(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	cur := fixAt(37.7749, -122.4194, time.Now())

	vpn := &ipintel.IpLocation{Latitude: 37.7749, Longitude: -122.4194, IsVPN: true}
	finding, err := eng.Evaluate("u1", cur, nil, vpn)
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagVPN))
	assert.Equal(eng.Policy.VPNPoints, finding.SuspicionScore)

	// both bits set contribute the fixed points once
	both := &ipintel.IpLocation{Latitude: 37.7749, Longitude: -122.4194, IsVPN: true, IsDataCenter: true}
	finding, err = eng.Evaluate("u1", cur, nil, both)
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagVPN))
	assert.True(finding.HasFlag(FlagDataCenter))
	assert.Equal(eng.Policy.VPNPoints, finding.SuspicionScore)
}

func TestEvaluateNoPriorFix(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	finding, err := eng.Evaluate("u1", fixAt(37.7749, -122.4194, time.Now()), nil, nil)
	require.NoError(t, err)
	assert.Empty(finding.Flags)
	assert.Equal(0, finding.SuspicionScore)
	assert.Equal(0, finding.VelocityKmh)
}

func TestEvaluateInvalidCoordinates(t *testing.T) {
	assert := assert.New(t)
	eng := testEngine(t)

	_, err := eng.Evaluate("u1", fixAt(91.0, 0, time.Now()), nil, nil)
	assert.ErrorIs(err, ErrInvalidFix)

	_, err = eng.Evaluate("u1", fixAt(0, -181.0, time.Now()), nil, nil)
	assert.ErrorIs(err, ErrInvalidFix)

	// an invalid previous fix skips the velocity check but does not fail
	now := time.Now()
	prev := fixAt(999, 999, now.Add(-time.Hour))
	finding, err := eng.Evaluate("u1", fixAt(37.7749, -122.4194, now), &prev, nil)
	require.NoError(t, err)
	assert.Equal(0, finding.SuspicionScore)
}

func TestPolicyValidate(t *testing.T) {
	assert := assert.New(t)

	p := DefaultPolicy()
	assert.NoError(p.Validate())

	p.VelocityCeilingKmh = 0
	assert.Error(p.Validate())

	p = DefaultPolicy()
	p.IPMismatchThresholdKm = -1
	assert.Error(p.Validate())

	p = DefaultPolicy()
	p.VPNPoints = -5
	assert.Error(p.Validate())
}
