// Package coverage keeps a per-run ledger of table extraction outcomes.
// Extractors declare which tables they expect up front, then record an
// outcome per table; the report surfaces critical tables that never
// produced data.
package coverage

import (
	"sort"
	"sync"
	"time"
)

// Status is the outcome recorded for one table.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Record is one append-only ledger entry.
type Record struct {
	Table     string    `json:"table"`
	Status    Status    `json:"status"`
	RowCount  int       `json:"row_count,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report aggregates the ledger: counts by status plus the critical
// tables that were expected but never extracted.
type Report struct {
	Extracted      int      `json:"extracted"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
	CriticalMissed []string `json:"critical_missed"`
	Records        []Record `json:"records"`
}

// Tracker accumulates coverage for one run. Safe for concurrent use;
// extractors running in parallel share a single tracker.
type Tracker struct {
	mu       sync.Mutex
	records  []Record
	critical map[string]bool // expected critical tables
	seen     map[string]bool // tables with an extracted record
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		critical: make(map[string]bool),
		seen:     make(map[string]bool),
	}
}

// Expect declares a table the run intends to cover. Critical tables
// that never get an extracted record show up in the report.
func (t *Tracker) Expect(table string, critical bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if critical {
		t.critical[table] = true
	} else if _, ok := t.critical[table]; !ok {
		t.critical[table] = false
	}
}

// Record appends one outcome to the ledger.
func (t *Tracker) Record(table string, status Status, rowCount int, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, Record{
		Table:     table,
		Status:    status,
		RowCount:  rowCount,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	if status == StatusExtracted {
		t.seen[table] = true
	}
}

// GetReport aggregates the ledger. Critical misses are sorted for
// stable output.
func (t *Tracker) GetReport() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := &Report{Records: append([]Record(nil), t.records...)}
	for _, r := range t.records {
		switch r.Status {
		case StatusExtracted:
			report.Extracted++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
	}
	for table, critical := range t.critical {
		if critical && !t.seen[table] {
			report.CriticalMissed = append(report.CriticalMissed, table)
		}
	}
	sort.Strings(report.CriticalMissed)
	return report
}
