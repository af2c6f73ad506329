package providers

import (
	"context"
	"strings"

	"github.com/fwber/warden/keyword"
	"github.com/fwber/warden/moderation"
	"github.com/fwber/warden/setstore"
)

const WordlistProviderName = "wordlist"

// https://en.wikipedia.org/wiki/GTUBE
var gtubeString = "XJS*C4JDBQADN1.NSBN3*2IDNEN*GTUBE-STANDARD-ANTI-UBE-TEST-EMAIL*C.34X"

// wordlist set names, looked up in the setstore as "<category>-words"
var wordlistCategories = []string{
	moderation.CategoryHate,
	moderation.CategoryHarassment,
	moderation.CategoryViolence,
	moderation.CategorySexual,
	moderation.CategorySpam,
}

// WordlistProvider is a zero-cost local classifier: tokenized text is
// checked against curated per-category wordlists. A hit is treated as a
// confident verdict (score 1.0) since the lists are curated, not learned.
// Small deployments can run on this provider alone with no external API.
type WordlistProvider struct {
	Sets setstore.SetStore
}

var _ moderation.ClassifierProvider = (*WordlistProvider)(nil)

func NewWordlistProvider(sets setstore.SetStore) *WordlistProvider {
	return &WordlistProvider{Sets: sets}
}

func (p *WordlistProvider) Name() string {
	return WordlistProviderName
}

func (p *WordlistProvider) Moderate(ctx context.Context, text string) (*moderation.ProviderResult, error) {
	categories := map[string]float64{}

	if strings.Contains(text, gtubeString) {
		categories[moderation.CategorySpam] = 1.0
	}

	tokens := keyword.TokenizeText(text)
	for _, cat := range wordlistCategories {
		if categories[cat] > 0 {
			continue
		}
		for _, tok := range tokens {
			hit, err := p.Sets.InSet(ctx, cat+"-words", tok)
			if err != nil {
				return nil, err
			}
			if hit {
				categories[cat] = 1.0
				break
			}
		}
	}

	flagged := len(categories) > 0
	var top float64
	if flagged {
		top = 1.0
	}
	return &moderation.ProviderResult{
		Flagged:    flagged,
		Categories: categories,
		Score:      top,
	}, nil
}
