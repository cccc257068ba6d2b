package filter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
)

// ErrStaleLookup marks an autocomplete response that lost the race to a
// newer keystroke. Callers discard it silently.
var ErrStaleLookup = fmt.Errorf("stale suggestion lookup")

// SuggestFunc fetches raw suggestions for a field and search term.
type SuggestFunc func(ctx context.Context, fieldID int64, term string) ([]string, error)

// Suggester debounces remote autocomplete lookups per field. Only the
// latest term issued for a field may produce results; responses for
// superseded terms resolve to ErrStaleLookup. Concurrent identical
// lookups collapse into one upstream call.
type Suggester struct {
	fetch    SuggestFunc
	debounce time.Duration

	mu     sync.Mutex
	latest map[int64]uint64
	group  singleflight.Group
}

// NewSuggester constructs a Suggester with the console's 300ms debounce.
func NewSuggester(fetch SuggestFunc) *Suggester {
	return &Suggester{
		fetch:    fetch,
		debounce: 300 * time.Millisecond,
		latest:   make(map[int64]uint64),
	}
}

// WithDebounce overrides the debounce window, mainly for tests.
func (s *Suggester) WithDebounce(d time.Duration) *Suggester {
	s.debounce = d
	return s
}

// Lookup waits out the debounce window, then fetches suggestions for the
// term if no newer keystroke arrived meanwhile. Stale calls return
// ErrStaleLookup; results are deduplicated case-insensitively keeping
// the first spelling seen.
func (s *Suggester) Lookup(ctx context.Context, fieldID int64, term string) ([]string, error) {
	s.mu.Lock()
	s.latest[fieldID]++
	seq := s.latest[fieldID]
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.debounce):
	}

	if !s.isLatest(fieldID, seq) {
		return nil, ErrStaleLookup
	}

	key := fmt.Sprintf("%d:%s", fieldID, term)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, fieldID, term)
	})
	if err != nil {
		return nil, err
	}

	// the fetch may have outlived yet another keystroke
	if !s.isLatest(fieldID, seq) {
		return nil, ErrStaleLookup
	}
	return dedupeFold(v.([]string)), nil
}

func (s *Suggester) isLatest(fieldID int64, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[fieldID] == seq
}

func dedupeFold(in []string) []string {
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		key := folder.String(strings.TrimSpace(v))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
