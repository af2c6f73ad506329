package countstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

type MemCountStore struct {
	mu     sync.Mutex
	counts map[string]int
}

var _ CountStore = (*MemCountStore)(nil)

func NewMemCountStore() *MemCountStore {
	return &MemCountStore{
		counts: make(map[string]int),
	}
}

func (s *MemCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[periodBucket(name, val, period)], nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{PeriodTotal, PeriodWeek, PeriodDay, PeriodHour} {
		s.counts[periodBucket(name, val, p)]++
	}
	return nil
}

// matches the hour/day/week bucket suffixes produced by periodBucket
var bucketSuffixPattern = regexp.MustCompile(`^\d{4}-(w\d{2}|\d{2}-\d{2}(T\d{2})?)$`)

// Prune drops buckets for past periods; totals are kept. Intended to be
// called by an external scheduler. The redis store expires buckets via key
// TTLs and needs no equivalent.
func (s *MemCountStore) Prune(ctx context.Context) error {
	now := time.Now().UTC()
	y, w := now.ISOWeek()
	current := map[string]bool{
		fmt.Sprintf("%d-w%02d", y, w):    true,
		now.Format(time.DateOnly):        true,
		now.Format(time.RFC3339)[0:13]:   true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.counts {
		suffix := k[strings.LastIndex(k, "/")+1:]
		if bucketSuffixPattern.MatchString(suffix) && !current[suffix] {
			delete(s.counts, k)
		}
	}
	return nil
}
