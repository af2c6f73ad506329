package setstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemSetStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ss := NewMemSetStore()

	ok, err := ss.InSet(ctx, "spam-words", "crypto")
	assert.NoError(err)
	assert.False(ok)

	ss.AddSet("spam-words", []string{"crypto", "giveaway"})

	ok, err = ss.InSet(ctx, "spam-words", "crypto")
	assert.NoError(err)
	assert.True(ok)

	ok, err = ss.InSet(ctx, "hate-words", "crypto")
	assert.NoError(err)
	assert.False(ok)
}

func TestMemSetStoreLoadJSON(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := filepath.Join(t.TempDir(), "sets.json")
	assert.NoError(os.WriteFile(p, []byte(`{"datacenter-isps": ["amazonaws", "hetzneronlinegmbh"]}`), 0644))

	ss := NewMemSetStore()
	assert.NoError(ss.LoadFromFileJSON(p))

	ok, err := ss.InSet(ctx, "datacenter-isps", "hetzneronlinegmbh")
	assert.NoError(err)
	assert.True(ok)
}
