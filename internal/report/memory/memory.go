package memory

import (
	"context"
	"sync"

	"nbbang/internal/report"
)

// Store collects settlement reports in memory. It is the default backend and
// the one the worker tests run against.
type Store struct {
	mu      sync.Mutex
	reports []report.Settlement
}

func New() *Store {
	return &Store{}
}

var _ report.SettlementWriter = (*Store)(nil)

func (s *Store) AppendSettlement(_ context.Context, r report.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

// Reports returns a copy of everything appended so far.
func (s *Store) Reports() []report.Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.Settlement, len(s.reports))
	copy(out, s.reports)
	return out
}
