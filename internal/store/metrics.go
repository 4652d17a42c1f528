package store

import "time"

func (s *Store) MetricsForDate(date string) *Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metrics[date]
	if !ok {
		return nil
	}
	return &m
}

// UpsertMetrics creates the record for in.Date or merges the provided
// counters into it. Id and CreatedAt of an existing record are kept.
func (s *Store) UpsertMetrics(in MetricsInput) *Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[in.Date]
	if !ok {
		m = Metrics{
			ID:        s.metricsSeq.take(),
			Date:      in.Date,
			CreatedAt: s.now(),
		}
	}
	for _, f := range []struct {
		dst *int
		v   *int
	}{
		{&m.TotalLinesWritten, in.TotalLinesWritten},
		{&m.TotalLinesDeleted, in.TotalLinesDeleted},
		{&m.TotalLinesModified, in.TotalLinesModified},
		{&m.FilesModified, in.FilesModified},
		{&m.BugsFixed, in.BugsFixed},
		{&m.FeaturesAdded, in.FeaturesAdded},
		{&m.CodeQualityScore, in.CodeQualityScore},
		{&m.TestsCoverage, in.TestsCoverage},
		{&m.PerformanceScore, in.PerformanceScore},
	} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}
	s.metrics[in.Date] = m
	return &m
}

// WeeklyMetrics returns the records dated within [start, end] inclusive.
// Records whose date cannot be parsed are skipped.
func (s *Store) WeeklyMetrics(start, end string) []Metrics {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return []Metrics{}
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return []Metrics{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.metrics, metricsID, func(m Metrics) bool {
		d, err := time.Parse(DateLayout, m.Date)
		if err != nil {
			return false
		}
		return !d.Before(from) && !d.After(to)
	})
}

func metricsID(m Metrics) int64 { return m.ID }
