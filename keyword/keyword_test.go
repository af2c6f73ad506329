package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		orig string
		out  string
	}{
		{orig: "", out: ""},
		{orig: "Amazon AWS", out: "amazonaws"},
		{orig: "Hetzner-Online GmbH", out: "hetzneronlinegmbh"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, Slugify(fix.orig))
	}
}

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  []string
	}{
		{text: "", out: []string{}},
		{text: "Hello, โลก!", out: []string{"hello", "โลก"}},
		{text: "Gdańsk", out: []string{"gdansk"}},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, TokenizeText(fix.text))
	}
}

func TestNormalizeText(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  string
	}{
		{text: "", out: ""},
		{text: "  Hey there!!  ", out: "hey there"},
		{text: "hey\nTHERE", out: "hey there"},
		{text: "héy there", out: "hey there"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, NormalizeText(fix.text))
	}

	// normalization equivalence is what makes fingerprints collide for
	// trivially-restyled duplicates
	assert.Equal(NormalizeText("Buy CRYPTO now!"), NormalizeText("buy crypto NOW"))
}
