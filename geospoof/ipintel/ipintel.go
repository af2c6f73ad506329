// IP intelligence: geolocation plus VPN/datacenter signals for an address.
//
// Includes a provider interface, a registry of named implementations, and
// an adapter for the ip-api.com service.
package ipintel

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
)

var (
	// returned for loopback/private/reserved addresses, which must never be
	// sent to an external resolver
	ErrPrivateIP       = errors.New("ipintel: private or reserved IP address")
	ErrUnknownProvider = errors.New("ipintel: unknown provider")
)

// Where an IP address appears to be, and whether it looks like proxy or
// datacenter egress. Produced once per lookup.
type IpLocation struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Country      string  `json:"country"`
	City         string  `json:"city"`
	ISP          string  `json:"isp,omitempty"`
	IsVPN        bool    `json:"isVpn"`
	IsDataCenter bool    `json:"isDataCenter"`
}

// Provider wraps one external IP geolocation service.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ip string) (*IpLocation, error)
}

type ProviderFactory func() (Provider, error)

// Registry maps provider names to factories, selected by config at startup.
type Registry struct {
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	r.factories[name] = f
}

func (r *Registry) Build(name string) (Provider, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return f()
}

// IsPrivateIP reports whether the address must not be resolved externally:
// unparseable, loopback, RFC1918/ULA, link-local, or unspecified.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsUnspecified()
}
