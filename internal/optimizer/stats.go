// Statistics provider of spec §4.5: "per-table row counts, per-column
// distinct counts, min/max, null counts, and per-node row-count estimates
// filled in as the plan is built", plus the named selectivity-estimation
// defaults. Grounded on spec.md §4.5's formulas verbatim; no teacher
// equivalent exists, so this is built directly from the spec text.
package optimizer

import "github.com/kkkqkx123/graphdb/internal/value"

// ColumnStats describes one column's distribution for selectivity
// estimation.
type ColumnStats struct {
	DistinctCount int64
	Min           value.Value
	Max           value.Value
	NullCount     int64
}

// TableStats describes one scannable object (a tag's vertex set, an edge
// type's edge set).
type TableStats struct {
	RowCount int64
	Columns  map[string]ColumnStats
}

// StatisticsProvider yields the statistics the cost model and
// selectivity estimators consume. A real implementation would read
// catalog-maintained histograms; InMemoryStatistics below is a directly
// populated test/bootstrap double.
type StatisticsProvider interface {
	RowCount(table string) int64
	Column(table, column string) (ColumnStats, bool)
}

// InMemoryStatistics is a StatisticsProvider populated directly (by tests,
// or by a future catalog-driven collector), keyed by table name.
type InMemoryStatistics struct {
	tables map[string]*TableStats
}

func NewInMemoryStatistics() *InMemoryStatistics {
	return &InMemoryStatistics{tables: make(map[string]*TableStats)}
}

func (s *InMemoryStatistics) SetRowCount(table string, rows int64) {
	t := s.table(table)
	t.RowCount = rows
}

func (s *InMemoryStatistics) SetColumn(table, column string, cs ColumnStats) {
	t := s.table(table)
	t.Columns[column] = cs
}

func (s *InMemoryStatistics) table(table string) *TableStats {
	t, ok := s.tables[table]
	if !ok {
		t = &TableStats{Columns: make(map[string]ColumnStats)}
		s.tables[table] = t
	}
	return t
}

func (s *InMemoryStatistics) RowCount(table string) int64 {
	t, ok := s.tables[table]
	if !ok {
		return defaultRowCountEstimate
	}
	return t.RowCount
}

func (s *InMemoryStatistics) Column(table, column string) (ColumnStats, bool) {
	t, ok := s.tables[table]
	if !ok {
		return ColumnStats{}, false
	}
	cs, ok := t.Columns[column]
	return cs, ok
}

// defaultRowCountEstimate is used when no statistics have been collected
// for a table yet, matching the "assume a modest table until proven
// otherwise" convention most cost-based optimizers default to.
const defaultRowCountEstimate = 1000

// EqualitySelectivity implements spec §4.5's "equality 1/ndv" default.
func EqualitySelectivity(ndv int64) float64 {
	if ndv <= 0 {
		return 1.0 / defaultRowCountEstimate
	}
	return 1.0 / float64(ndv)
}

// RangeSelectivity implements spec §4.5's "range fraction × (max-min)"
// default: fraction is the caller-estimated portion of the domain the
// range predicate covers (already normalized to [0,1]).
func RangeSelectivity(fraction float64) float64 {
	return clampSelectivity(fraction)
}

// ConjunctionSelectivity implements spec §4.5's "conjunction multiplicative
// (independence assumption)" default.
func ConjunctionSelectivity(sels ...float64) float64 {
	result := 1.0
	for _, s := range sels {
		result *= clampSelectivity(s)
	}
	return clampSelectivity(result)
}

// DisjunctionSelectivity implements spec §4.5's "disjunction inclusion-
// exclusion with clamp" default, applying pairwise inclusion-exclusion
// left to right and clamping the running total to [0,1] each step.
func DisjunctionSelectivity(sels ...float64) float64 {
	if len(sels) == 0 {
		return 0
	}
	total := clampSelectivity(sels[0])
	for _, s := range sels[1:] {
		s = clampSelectivity(s)
		total = clampSelectivity(total + s - total*s)
	}
	return total
}

func clampSelectivity(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
