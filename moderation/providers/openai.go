package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwber/warden/moderation"
	"github.com/fwber/warden/util"

	openai "github.com/sashabaranov/go-openai"
)

const OpenAIProviderName = "openai"

// OpenAIProvider wraps the OpenAI moderations endpoint, which returns
// calibrated per-category scores directly.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

var _ moderation.ClassifierProvider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = util.RobustHTTPClient()
	if model == "" {
		model = openai.ModerationTextLatest
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return OpenAIProviderName
}

func (p *OpenAIProvider) Moderate(ctx context.Context, text string) (*moderation.ProviderResult, error) {
	resp, err := p.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI moderation request failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("OpenAI moderation returned no results")
	}
	res := resp.Results[0]

	// collapse OpenAI's finer-grained taxonomy onto the platform categories
	scores := res.CategoryScores
	categories := map[string]float64{
		moderation.CategoryHate:       maxf(float64(scores.Hate), float64(scores.HateThreatening)),
		moderation.CategoryHarassment: maxf(float64(scores.Harassment), float64(scores.HarassmentThreatening)),
		moderation.CategoryViolence:   maxf(float64(scores.Violence), float64(scores.ViolenceGraphic)),
		moderation.CategorySexual:     maxf(float64(scores.Sexual), float64(scores.SexualMinors)),
	}

	var top float64
	for _, s := range categories {
		top = maxf(top, s)
	}

	return &moderation.ProviderResult{
		Flagged:    res.Flagged,
		Categories: categories,
		Score:      top,
	}, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
