package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fwber/warden/cachestore"

	"golang.org/x/sync/singleflight"
)

const decisionCacheName = "decision"

// Engine orchestrates parallel classifier calls and merges their results
// into a single decision per policy.
//
// The only shared mutable state is the decision cache; the merge step runs
// single-threaded after fan-in, so Evaluate is safe to call concurrently.
type Engine struct {
	Logger    *slog.Logger
	Policy    Policy
	Providers []ClassifierProvider
	Cache     cachestore.CacheStore

	// collapses concurrent evaluations of the same fingerprint into one
	// set of provider calls
	group singleflight.Group
}

func NewEngine(logger *slog.Logger, policy Policy, registry *Registry, cache cachestore.CacheStore) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	providers, err := registry.Build(policy.Providers)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Logger:    logger,
		Policy:    policy,
		Providers: providers,
		Cache:     cache,
	}, nil
}

// Evaluate classifies one piece of user-generated text and returns an
// immutable decision. On a cache hit no provider is called. On total
// provider failure the configured fail-safe decision is returned rather
// than an error, so callers always get something actionable.
func (eng *Engine) Evaluate(ctx context.Context, text string) (*ModerationDecision, error) {
	fp := Fingerprint(text)

	if cached, ok := eng.cachedDecision(ctx, fp); ok {
		decisionCacheHits.Inc()
		return cached, nil
	}

	v, err, _ := eng.group.Do(fp, func() (interface{}, error) {
		return eng.evaluateUncached(ctx, fp, text)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModerationDecision), nil
}

func (eng *Engine) cachedDecision(ctx context.Context, fp string) (*ModerationDecision, bool) {
	raw, ok, err := eng.Cache.Get(ctx, decisionCacheName, fp)
	if err != nil {
		eng.Logger.Warn("decision cache read failed", "err", err, "fingerprint", fp)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var decision ModerationDecision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		eng.Logger.Warn("corrupt cached decision, re-evaluating", "err", err, "fingerprint", fp)
		return nil, false
	}
	return &decision, true
}

func (eng *Engine) evaluateUncached(ctx context.Context, fp, text string) (*ModerationDecision, error) {
	// counted here, inside the singleflight, so a collapsed burst registers
	// one miss per actual fan-out
	decisionCacheMisses.Inc()

	ctx, cancel := context.WithTimeout(ctx, eng.Policy.EvaluateTimeout)
	defer cancel()

	// fan-out: one goroutine per enabled provider, each bounded by the
	// per-provider timeout; results land on a buffered channel so late
	// finishers never block after fan-in gives up on them
	results := make(chan *ProviderResult, len(eng.Providers))
	for _, p := range eng.Providers {
		go func(p ClassifierProvider) {
			results <- eng.callProvider(ctx, p, text)
		}(p)
	}

	var completed []*ProviderResult
collect:
	for range eng.Providers {
		select {
		case res := <-results:
			if res.Err != nil {
				eng.Logger.Warn("classifier provider failed", "provider", res.Provider, "err", res.Err)
				continue
			}
			completed = append(completed, res)
		case <-ctx.Done():
			// overall timeout: proceed to consensus with whatever completed
			eng.Logger.Warn("moderation evaluation timeout, using partial results", "fingerprint", fp, "completed", len(completed))
			break collect
		}
	}

	decision := eng.consensus(completed)
	moderationDecisions.WithLabelValues(decision.Action).Inc()

	if raw, err := json.Marshal(decision); err == nil {
		if err := eng.Cache.Set(ctx, decisionCacheName, fp, string(raw), eng.Policy.CacheTTL); err != nil {
			eng.Logger.Warn("decision cache write failed", "err", err, "fingerprint", fp)
		}
	}
	return decision, nil
}

func (eng *Engine) callProvider(ctx context.Context, p ClassifierProvider, text string) (out *ProviderResult) {
	// a panicking provider counts as errored, never takes down the engine
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("classifier provider panic", "provider", p.Name(), "err", r)
			out = &ProviderResult{Provider: p.Name(), Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, eng.Policy.ProviderTimeout)
	defer cancel()

	start := time.Now()
	res, err := p.Moderate(ctx, text)
	providerCallDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		providerCalls.WithLabelValues(p.Name(), "error").Inc()
		return &ProviderResult{Provider: p.Name(), Err: err}
	}
	providerCalls.WithLabelValues(p.Name(), "ok").Inc()
	res.Provider = p.Name()
	return res
}

// consensus merges completed provider results: OR of provider flags, with
// per-category threshold override, and max-merge of category scores. Order
// independent by construction.
func (eng *Engine) consensus(completed []*ProviderResult) *ModerationDecision {
	if len(completed) == 0 {
		return eng.failSafeDecision()
	}

	flagged := false
	categories := make(map[string]float64)
	providers := make([]string, 0, len(completed))
	var reasons []string

	for _, res := range completed {
		providers = append(providers, res.Provider)
		if res.Flagged {
			flagged = true
			reasons = append(reasons, ReasonProviderFlagged+":"+res.Provider)
		}
		for cat, score := range res.Categories {
			if score > categories[cat] {
				categories[cat] = score
			}
		}
	}

	// a single confident detector is not diluted by the others: any merged
	// category score at or above its threshold flags the content
	for cat, score := range categories {
		thresh, ok := eng.Policy.CategoryThresholds[cat]
		if ok && score >= thresh {
			flagged = true
			reasons = append(reasons, ReasonCategoryThreshold+":"+cat)
		}
	}
	sort.Strings(providers)
	sort.Strings(reasons)

	action := ActionApprove
	if flagged {
		action = ActionReject
	}
	return &ModerationDecision{
		Flagged:    flagged,
		Action:     action,
		Providers:  providers,
		Categories: categories,
		Reasons:    reasons,
		ComputedAt: time.Now().UTC(),
	}
}

// failSafeDecision is the verdict when every provider errored or timed out.
// Closed mode rejects unchecked content; open mode lets it through. Both
// carry the distinguished reason so operators can tell fail-safe decisions
// from real verdicts.
func (eng *Engine) failSafeDecision() *ModerationDecision {
	failSafeDecisions.Inc()
	flagged := eng.Policy.FailSafeMode != FailOpen
	action := ActionReject
	if !flagged {
		action = ActionApprove
	}
	eng.Logger.Error("all classifier providers failed, applying fail-safe", "mode", eng.Policy.FailSafeMode, "action", action)
	return &ModerationDecision{
		Flagged:    flagged,
		Action:     action,
		Providers:  []string{},
		Categories: map[string]float64{},
		Reasons:    []string{ReasonFailSafe},
		ComputedAt: time.Now().UTC(),
	}
}
