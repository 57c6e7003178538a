package dispatcher

import (
	"cmp"
	"slices"
	"sync"
)

// Storage archives run reports
type Storage interface {
	SaveReport(r *Report) error
	LoadReport(runID string) (*Report, error)
	// ListReports returns every archived report, oldest first
	ListReports() ([]*Report, error)
	// LatestRunID returns the ID of the last saved run, or "" if none
	LatestRunID() (string, error)
	Close() error
}

type memoryStorage struct {
	reports map[string]*Report
	latest  string
	mu      sync.RWMutex
}

// NewNoOpStorage returns a Storage that keeps reports in memory for the
// life of the process
func NewNoOpStorage() Storage {
	return &memoryStorage{reports: make(map[string]*Report)}
}

func (s *memoryStorage) SaveReport(r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	cp.Files = slices.Clone(r.Files)
	s.reports[r.RunID] = &cp
	s.latest = r.RunID
	return nil
}

func (s *memoryStorage) LoadReport(runID string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[runID]
	if !ok {
		return nil, ErrReportNotFound
	}
	cp := *r
	cp.Files = slices.Clone(r.Files)
	return &cp, nil
}

func (s *memoryStorage) ListReports() ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Report, 0, len(s.reports))
	for _, r := range s.reports {
		cp := *r
		out = append(out, &cp)
	}
	sortReports(out)
	return out, nil
}

func (s *memoryStorage) LatestRunID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, nil
}

func (s *memoryStorage) Close() error {
	return nil
}

func sortReports(reports []*Report) {
	slices.SortFunc(reports, func(a, b *Report) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.RunID, b.RunID)
	})
}
