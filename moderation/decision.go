package moderation

import (
	"time"
)

// Score categories shared across providers. Providers may report additional
// categories; thresholds are looked up by name so extra categories work
// without code changes.
const (
	CategoryHate       = "hate"
	CategoryHarassment = "harassment"
	CategoryViolence   = "violence"
	CategorySexual     = "sexual"
	CategorySpam       = "spam"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Decision reasons. ReasonFailSafe is the distinguished marker for a
// fail-closed rejection where no provider returned a verdict.
const (
	ReasonProviderFlagged   = "provider_flagged"
	ReasonCategoryThreshold = "category_threshold"
	ReasonFailSafe          = "failsafe_no_provider_response"
)

// The verdict of a single classifier for a single piece of content. Owned
// by the engine for the duration of one Evaluate call.
type ProviderResult struct {
	Provider   string
	Flagged    bool
	Categories map[string]float64
	Score      float64
	// transport/auth/quota failure; a non-nil Err means the result carries
	// no content verdict and is excluded from consensus
	Err error
}

// Immutable outcome of one consensus evaluation. Serialized as JSON into
// the decision cache.
type ModerationDecision struct {
	Flagged    bool               `json:"flagged"`
	Action     string             `json:"action"`
	Providers  []string           `json:"providers"`
	Categories map[string]float64 `json:"categories"`
	Reasons    []string           `json:"reasons,omitempty"`
	ComputedAt time.Time          `json:"computedAt"`
}
