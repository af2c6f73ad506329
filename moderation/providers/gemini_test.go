package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwber/warden/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiFakeServer(t *testing.T, verdictJSON string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")

		var req geminiReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		resp := map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": verdictJSON}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGeminiProviderModerate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := geminiFakeServer(t, `{"flagged": true, "categories": {"hate": 0.92, "spam": 0.1}, "reason": "hateful"}`)
	defer srv.Close()

	p, err := NewGeminiProvider("test-key", "gemini-2.0-flash")
	require.NoError(t, err)
	p.Host = srv.URL

	res, err := p.Moderate(ctx, "some hateful text")
	require.NoError(t, err)
	assert.True(res.Flagged)
	assert.Equal(0.92, res.Categories[moderation.CategoryHate])
	assert.Equal(0.92, res.Score)
}

func TestGeminiProviderServerError(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("bad-key", "")
	require.NoError(t, err)
	p.Host = srv.URL

	_, err = p.Moderate(ctx, "anything")
	assert.Error(t, err)
}

func TestParseGeminiVerdict(t *testing.T) {
	assert := assert.New(t)

	// plain JSON
	v, err := parseGeminiVerdict(`{"flagged": false, "categories": {"spam": 0.2}}`)
	require.NoError(t, err)
	assert.False(v.Flagged)
	assert.Equal(0.2, v.Categories["spam"])

	// fenced JSON, despite the JSON-only instruction
	v, err = parseGeminiVerdict("```json\n{\"flagged\": true, \"categories\": {}}\n```")
	require.NoError(t, err)
	assert.True(v.Flagged)

	// garbage
	_, err = parseGeminiVerdict("I can't help with that.")
	assert.Error(err)
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider("", "")
	assert.Error(t, err)
}
