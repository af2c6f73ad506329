package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwber/warden/moderation"
	"github.com/fwber/warden/util"

	"github.com/carlmjohnson/versioninfo"
)

const GeminiProviderName = "gemini"

const defaultGeminiHost = "https://generativelanguage.googleapis.com"

// Gemini has no dedicated moderation endpoint, so the adapter asks the
// generation endpoint for a JSON-only verdict over the platform categories.
const geminiModerationPrompt = `Analyze the following content for moderation. Respond with JSON only.

Content: %q

Check for: hate speech, harassment, violence, sexual content, spam.
Respond with JSON: {"flagged": boolean, "categories": {"hate": 0.0-1.0, "harassment": 0.0-1.0, "violence": 0.0-1.0, "sexual": 0.0-1.0, "spam": 0.0-1.0}, "reason": "explanation"}`

type GeminiProvider struct {
	Client *http.Client
	APIKey string
	Model  string
	Host   string
}

var _ moderation.ClassifierProvider = (*GeminiProvider)(nil)

// request/response schema: https://ai.google.dev/api/generate-content
type geminiReq struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig geminiGenConfig  `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResp struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiVerdict struct {
	Flagged    bool               `json:"flagged"`
	Categories map[string]float64 `json:"categories"`
	Reason     string             `json:"reason"`
}

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		Client: util.RobustHTTPClient(),
		APIKey: apiKey,
		Model:  model,
		Host:   defaultGeminiHost,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return GeminiProviderName
}

func (p *GeminiProvider) Moderate(ctx context.Context, text string) (*moderation.ProviderResult, error) {

	payload := geminiReq{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: fmt.Sprintf(geminiModerationPrompt, text)}},
			},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.0,
			MaxOutputTokens: 512,
		},
	}
	body, err := json.Marshal(&payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.Host, p.Model, p.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "warden/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		geminiAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}
	defer res.Body.Close()

	geminiAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("Gemini request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Gemini resp body: %w", err)
	}

	var respObj geminiResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini resp JSON: %w", err)
	}
	if len(respObj.Candidates) == 0 || len(respObj.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini returned no candidates")
	}

	verdict, err := parseGeminiVerdict(respObj.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	var top float64
	for _, s := range verdict.Categories {
		if s > top {
			top = s
		}
	}

	return &moderation.ProviderResult{
		Flagged:    verdict.Flagged,
		Categories: verdict.Categories,
		Score:      top,
	}, nil
}

// parseGeminiVerdict tolerates the model wrapping its JSON in markdown code
// fences despite the JSON-only instruction.
func parseGeminiVerdict(text string) (*geminiVerdict, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var verdict geminiVerdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini verdict JSON: %w", err)
	}
	if verdict.Categories == nil {
		verdict.Categories = map[string]float64{}
	}
	return &verdict, nil
}
