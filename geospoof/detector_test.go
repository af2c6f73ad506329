package geospoof

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fwber/warden/countstore"
	"github.com/fwber/warden/flagstore"
	"github.com/fwber/warden/geospoof/ipintel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector(t *testing.T, ipProvider ipintel.Provider) *Detector {
	eng, err := NewEngine(slog.Default(), DefaultPolicy())
	require.NoError(t, err)
	return NewDetector(slog.Default(), eng, ipProvider, countstore.NewMemCountStore(), flagstore.NewMemFlagStore())
}

func TestDetectorHighRiskFlagsAccount(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// VPN exit colocated with the claimed fix: no mismatch, just the VPN points
	mock := &ipintel.MockProvider{Loc: &ipintel.IpLocation{
		Latitude: 40.7128, Longitude: -74.0060, IsVPN: true,
	}}
	d := testDetector(t, mock)

	now := time.Now()
	prev := fixAt(37.7749, -122.4194, now.Add(-10*time.Minute))
	cur := fixAt(40.7128, -74.0060, now)

	finding, err := d.Check(ctx, "u1", cur, &prev, "8.8.8.8")
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagHighVelocity))
	assert.True(finding.HasFlag(FlagVPN))
	assert.GreaterOrEqual(finding.SuspicionScore, d.Engine.Policy.HighRiskScore)

	flags, err := d.Flags.Get(ctx, "user/u1")
	require.NoError(t, err)
	assert.Contains(flags, FlagGeoSpoofSuspect)

	// the significant finding was counted
	c, err := d.Counters.GetCount(ctx, findingCounterName, "u1", countstore.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(1, c)
}

func TestDetectorBenignUpdate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	d := testDetector(t, nil)

	finding, err := d.Check(ctx, "u1", fixAt(37.7749, -122.4194, time.Now()), nil, "")
	require.NoError(t, err)
	assert.Equal(0, finding.SuspicionScore)
	assert.Empty(finding.Flags)

	flags, err := d.Flags.Get(ctx, "user/u1")
	require.NoError(t, err)
	assert.Empty(flags)
}

func TestDetectorResolverFailureDegrades(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mock := &ipintel.MockProvider{Fail: errors.New("upstream timeout")}
	d := testDetector(t, mock)

	now := time.Now()
	prev := fixAt(37.7749, -122.4194, now.Add(-10*time.Minute))
	cur := fixAt(40.7128, -74.0060, now)

	// lookup failure loses the cross-check, not the whole evaluation
	finding, err := d.Check(ctx, "u1", cur, &prev, "8.8.8.8")
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagHighVelocity))
	assert.False(finding.HasFlag(FlagIPMismatch))
	assert.False(finding.HasFlag(FlagVPN))
}

func TestDetectorPrivateIPSkipsCrossCheck(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mock := &ipintel.MockProvider{Loc: &ipintel.IpLocation{
		Latitude: 48.8566, Longitude: 2.3522, IsVPN: true,
	}}
	d := testDetector(t, mock)

	finding, err := d.Check(ctx, "u1", fixAt(37.7749, -122.4194, time.Now()), nil, "192.168.1.44")
	require.NoError(t, err)
	assert.Empty(finding.Flags)
	assert.Equal(0, finding.SuspicionScore)
}

func TestDetectorFrequentChanges(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	d := testDetector(t, nil)
	perWeek := d.Engine.Policy.FrequentChangesPerWeek

	for i := 0; i < perWeek+1; i++ {
		require.NoError(t, d.Counters.Increment(ctx, findingCounterName, "u1"))
	}

	// an otherwise clean update still carries the frequency signal
	finding, err := d.Check(ctx, "u1", fixAt(37.7749, -122.4194, time.Now()), nil, "")
	require.NoError(t, err)
	assert.True(finding.HasFlag(FlagFrequentChanges))
	assert.Equal(d.Engine.Policy.FrequentChangesPoints, finding.SuspicionScore)

	// a different user is unaffected
	finding, err = d.Check(ctx, "u2", fixAt(37.7749, -122.4194, time.Now()), nil, "")
	require.NoError(t, err)
	assert.False(finding.HasFlag(FlagFrequentChanges))
}
