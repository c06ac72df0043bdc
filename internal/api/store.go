package api

import (
	"slices"
	"sync"

	"github.com/samcharles93/lespmv/internal/harness"
)

// RunStore keeps finished reports in memory, in creation order.
type RunStore struct {
	mu    sync.Mutex
	runs  map[string]*harness.Report
	order []string
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*harness.Report),
	}
}

func (s *RunStore) Save(rep *harness.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[rep.ID]; !ok {
		s.order = append(s.order, rep.ID)
	}
	s.runs[rep.ID] = rep
}

func (s *RunStore) Get(id string) (*harness.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.runs[id]
	return rep, ok
}

func (s *RunStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true
}

func (s *RunStore) List() []*harness.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*harness.Report, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id])
	}
	return out
}

func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}
