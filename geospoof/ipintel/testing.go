package ipintel

import (
	"context"
)

// Scripted in-process provider for tests.
type MockProvider struct {
	Loc  *IpLocation
	Fail error
}

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Resolve(ctx context.Context, ip string) (*IpLocation, error) {
	if IsPrivateIP(ip) {
		return nil, ErrPrivateIP
	}
	if m.Fail != nil {
		return nil, m.Fail
	}
	return m.Loc, nil
}
