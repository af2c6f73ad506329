package geospoof

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fwber/warden/countstore"
	"github.com/fwber/warden/flagstore"
	"github.com/fwber/warden/geospoof/ipintel"
)

// account flag set when a finding crosses the high-risk bar
const FlagGeoSpoofSuspect = "geo-spoof-suspect"

const findingCounterName = "geospoof-finding"

// Detector wraps the pure Engine with the service concerns around it:
// resolving the client IP, the finding-frequency signal, counters, and
// account risk flags. Storing findings themselves stays with the caller.
type Detector struct {
	Logger   *slog.Logger
	Engine   *Engine
	IPIntel  ipintel.Provider
	Counters countstore.CountStore
	Flags    flagstore.FlagStore
}

func NewDetector(logger *slog.Logger, engine *Engine, ipProvider ipintel.Provider, counters countstore.CountStore, flags flagstore.FlagStore) *Detector {
	return &Detector{
		Logger:   logger,
		Engine:   engine,
		IPIntel:  ipProvider,
		Counters: counters,
		Flags:    flags,
	}
}

// Check evaluates one location update end to end. A failed or private-range
// IP lookup degrades to an evaluation without the cross-check rather than
// failing the update.
func (d *Detector) Check(ctx context.Context, userID string, newFix LocationFix, prevFix *LocationFix, ipAddr string) (*GeoSpoofFinding, error) {
	var ipLoc *ipintel.IpLocation
	if d.IPIntel != nil && ipAddr != "" {
		loc, err := d.IPIntel.Resolve(ctx, ipAddr)
		switch {
		case err == nil:
			ipLoc = loc
		case errors.Is(err, ipintel.ErrPrivateIP):
			d.Logger.Debug("skipping IP cross-check for private address", "user", userID)
		default:
			d.Logger.Warn("IP lookup failed, skipping cross-check", "user", userID, "err", err)
		}
	}

	finding, err := d.Engine.Evaluate(userID, newFix, prevFix, ipLoc)
	if err != nil {
		return nil, fmt.Errorf("evaluating location update: %w", err)
	}

	policy := d.Engine.Policy

	if d.Counters != nil {
		prior, err := d.Counters.GetCount(ctx, findingCounterName, userID, countstore.PeriodWeek)
		if err != nil {
			d.Logger.Warn("finding counter read failed", "user", userID, "err", err)
		} else if prior > policy.FrequentChangesPerWeek {
			finding.Flags = append(finding.Flags, FlagFrequentChanges)
			finding.SuspicionScore = clampScore(finding.SuspicionScore + policy.FrequentChangesPoints)
		}
	}

	if finding.SuspicionScore >= policy.SignificantScore {
		findingsSignificant.Inc()
		if d.Counters != nil {
			if err := d.Counters.Increment(ctx, findingCounterName, userID); err != nil {
				d.Logger.Warn("finding counter increment failed", "user", userID, "err", err)
			}
		}
	}

	if finding.SuspicionScore >= policy.HighRiskScore {
		findingsHighRisk.Inc()
		d.Logger.Info("high-risk geo-spoof finding", "user", userID, "score", finding.SuspicionScore, "flags", finding.Flags)
		if d.Flags != nil {
			if err := d.Flags.Add(ctx, "user/"+userID, []string{FlagGeoSpoofSuspect}); err != nil {
				d.Logger.Warn("account flag write failed", "user", userID, "err", err)
			}
		}
	}

	return finding, nil
}

// Pruner is implemented by stores holding period state that does not expire
// on its own.
type Pruner interface {
	Prune(ctx context.Context) error
}

// Prune drops expired period state from the backing stores. The detector
// holds no timers; an external scheduler calls this.
func (d *Detector) Prune(ctx context.Context) error {
	if p, ok := d.Counters.(Pruner); ok {
		return p.Prune(ctx)
	}
	return nil
}
