// Durable risk flags attached to accounts (eg, "geo-spoof-suspect"), set by
// the trust & safety engines and read by review tooling.
//
// Includes an interface and implementations using redis and in-process memory.
package flagstore

import (
	"context"
)

type FlagStore interface {
	Get(ctx context.Context, key string) ([]string, error)
	Add(ctx context.Context, key string, flags []string) error
	Remove(ctx context.Context, key string, flags []string) error
}
