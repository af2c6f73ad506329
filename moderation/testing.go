package moderation

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwber/warden/cachestore"
)

// Scripted in-process classifier for tests. Counts calls so caching and
// single-flight behavior can be asserted.
type MockProvider struct {
	ProviderName string
	Result       ProviderResult
	Fail         error
	Delay        time.Duration
	Panic        bool

	calls atomic.Int64
}

var _ ClassifierProvider = (*MockProvider)(nil)

func (m *MockProvider) Name() string {
	return m.ProviderName
}

func (m *MockProvider) CallCount() int64 {
	return m.calls.Load()
}

func (m *MockProvider) Moderate(ctx context.Context, text string) (*ProviderResult, error) {
	m.calls.Add(1)
	if m.Panic {
		panic("mock provider panic")
	}
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Fail != nil {
		return nil, m.Fail
	}
	res := m.Result
	res.Provider = m.ProviderName
	return &res, nil
}

// EngineTestFixture builds an engine over the given mock providers with an
// in-process cache and default policy.
func EngineTestFixture(providers ...*MockProvider) *Engine {
	policy := DefaultPolicy()
	reg := NewRegistry()
	for _, p := range providers {
		p := p
		policy.Providers = append(policy.Providers, p.ProviderName)
		reg.Register(p.ProviderName, func() (ClassifierProvider, error) { return p, nil })
	}
	eng, err := NewEngine(slog.Default(), policy, reg, cachestore.NewMemCacheStore(100, time.Hour))
	if err != nil {
		panic(err)
	}
	return eng
}
