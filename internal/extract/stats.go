package extract

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/hearinglist/internal/parser"
)

// Outcome labels used in stats snapshots.
const (
	OutcomeTable           = "table"
	OutcomeText            = "text"
	OutcomeEmptyDocument   = "empty_document"
	OutcomeStyleUnknown    = "style_undetectable"
	OutcomeToolUnavailable = "tool_unavailable"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	outcome    string
	failed     int
}

// StatsSnapshot aggregates recent extractions: latency percentiles plus
// per-outcome document counts.
type StatsSnapshot struct {
	Count       int            `json:"count"`
	MinMs       int64          `json:"min_ms"`
	MaxMs       int64          `json:"max_ms"`
	AvgMs       float64        `json:"avg_ms"`
	P50Ms       float64        `json:"p50_ms"`
	P95Ms       float64        `json:"p95_ms"`
	Outcomes    map[string]int `json:"outcomes"`
	FailedPages int            `json:"failed_pages"`
}

// Stats keeps extraction samples within a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one finished extraction.
func (s *Stats) Record(res Result) {
	ms := res.Duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: ms,
		outcome:    Outcome(res),
		failed:     res.FailedPages,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	snap := StatsSnapshot{Outcomes: map[string]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		snap.Outcomes[sm.outcome]++
		snap.FailedPages += sm.failed
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	return snap
}

// Outcome maps a Result to its stats label.
func Outcome(res Result) string {
	switch {
	case errors.Is(res.Err, ErrEmptyDocument):
		return OutcomeEmptyDocument
	case errors.Is(res.Err, ErrStyleUndetectable):
		return OutcomeStyleUnknown
	case errors.Is(res.Err, parser.ErrToolUnavailable):
		return OutcomeToolUnavailable
	case res.Method == MethodTable:
		return OutcomeTable
	default:
		return OutcomeText
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	kept := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			kept = append(kept, sm)
		}
	}
	s.samples = kept
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[n-1])
	}
	rank := float64(n-1) * pct / 100
	lower := int(rank)
	if lower+1 >= n {
		return float64(sorted[lower])
	}
	frac := rank - float64(lower)
	return float64(sorted[lower]) + (float64(sorted[lower+1])-float64(sorted[lower]))*frac
}
