package build

import (
	"sync"
)

// Stats summarises the compiles a Builder has run since it was created.
type Stats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	// Failed counts compiles that ran but produced no PDF or a non-zero exit.
	Failed int64 `json:"failed"`
	// Errored counts compiles that could not run at all.
	Errored   int64 `json:"errored"`
	AverageMS int64 `json:"average_ms"`
	LastMS    int64 `json:"last_ms"`
}

// SuccessRate returns the percentage of compiles that succeeded.
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}

type metrics struct {
	mu      sync.Mutex
	stats   Stats
	totalMS int64
}

func (m *metrics) record(res *Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.Total++
	switch {
	case err != nil:
		m.stats.Errored++
		return
	case res.Success:
		m.stats.Succeeded++
	default:
		m.stats.Failed++
	}

	m.stats.LastMS = res.DurationMS
	m.totalMS += res.DurationMS
	if ran := m.stats.Succeeded + m.stats.Failed; ran > 0 {
		m.stats.AverageMS = m.totalMS / ran
	}
}

func (m *metrics) snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
