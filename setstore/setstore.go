// Named sets of strings, loaded once at startup from a JSON config file.
//
// Used for per-category moderation wordlists and the datacenter ISP list.
// Sets are read-only after loading.
package setstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
}

type MemSetStore struct {
	mu   sync.RWMutex
	sets map[string]map[string]bool
}

var _ SetStore = (*MemSetStore)(nil)

func NewMemSetStore() *MemSetStore {
	return &MemSetStore{
		sets: make(map[string]map[string]bool),
	}
}

func (s *MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[name]
	if !ok {
		// NOTE: returns false when the entire set isn't configured
		return false, nil
	}
	return set[val], nil
}

func (s *MemSetStore) AddSet(name string, vals []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sets[name]
	if !ok {
		m = make(map[string]bool, len(vals))
		s.sets[name] = m
	}
	for _, v := range vals {
		m[v] = true
	}
}

// Loads sets from a JSON file mapping set name to a list of strings.
func (s *MemSetStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sets map[string][]string
	if err := json.Unmarshal(raw, &sets); err != nil {
		return fmt.Errorf("parsing sets file: %w", err)
	}

	for name, l := range sets {
		s.AddSet(name, l)
	}
	return nil
}
