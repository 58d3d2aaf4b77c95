// Ordering family (spec §4.6): Sort, Limit, TopN, Sample, Dedup.
package executor

import (
	"container/heap"
	"context"
	"math/rand"
	"sort"

	"github.com/kkkqkx123/graphdb/internal/plan"
)

// sortOperator materializes its child fully on Open (a blocking operator,
// as sorting requires seeing every row), then streams rows out in the
// order SortAttrs.Keys describes.
type sortOperator struct {
	baseStats
	child Operator
	keys  []plan.SortKey
	rows  []Row
	pos   int
}

func newSortOperator(n *plan.Node, child Operator) (*sortOperator, error) {
	a, ok := n.Attrs.(plan.SortAttrs)
	if !ok {
		return nil, badAttrs(n, "SortAttrs")
	}
	return &sortOperator{child: child, keys: a.Keys}, nil
}

func (s *sortOperator) Open(ctx context.Context) error {
	s.onOpen()
	if err := s.child.Open(ctx); err != nil {
		return err
	}
	rows, err := drain(ctx, s.child)
	if err != nil {
		return err
	}
	sort.SliceStable(rows, func(i, j int) bool { return lessRows(rows[i], rows[j], s.keys) })
	s.rows = rows
	s.pos = 0
	return nil
}

func (s *sortOperator) Next(ctx context.Context) (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	r := s.rows[s.pos]
	s.pos++
	s.onRow()
	return r, nil
}

func (s *sortOperator) Close() error { s.onClose(); return s.child.Close() }
func (s *sortOperator) Stats() Stats { return s.stats() }

// lessRows implements SortAttrs.Keys' multi-key comparator: earlier keys
// take priority, each independently ascending/descending. NULL values sort
// last in either direction; non-NULL values that do not compare are
// treated as equal on that key.
func lessRows(a, b Row, keys []plan.SortKey) bool {
	for _, k := range keys {
		av, bv := a[k.Column], b[k.Column]
		if av.IsNull() && bv.IsNull() {
			continue
		}
		if av.IsNull() {
			return false
		}
		if bv.IsNull() {
			return true
		}
		cmp, ok := av.Compare(bv)
		if !ok || cmp == 0 {
			continue
		}
		if k.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// limitOperator skips Skip rows then yields up to Count, streaming from its
// child without materializing (no ordering requirement of its own).
type limitOperator struct {
	baseStats
	child      Operator
	skip       int64
	count      int64
	skipped    int64
	emitted    int64
}

func newLimitOperator(n *plan.Node, child Operator) (*limitOperator, error) {
	a, ok := n.Attrs.(plan.LimitAttrs)
	if !ok {
		return nil, badAttrs(n, "LimitAttrs")
	}
	return &limitOperator{child: child, skip: a.Skip, count: a.Count}, nil
}

func (l *limitOperator) Open(ctx context.Context) error {
	l.onOpen()
	l.skipped, l.emitted = 0, 0
	return l.child.Open(ctx)
}

func (l *limitOperator) Next(ctx context.Context) (Row, error) {
	if l.count >= 0 && l.emitted >= l.count {
		return nil, nil
	}
	for l.skipped < l.skip {
		r, err := l.child.Next(ctx)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, nil
		}
		l.skipped++
	}
	r, err := l.child.Next(ctx)
	if err != nil || r == nil {
		return r, err
	}
	l.emitted++
	l.onRow()
	return r, nil
}

func (l *limitOperator) Close() error { l.onClose(); return l.child.Close() }
func (l *limitOperator) Stats() Stats { return l.stats() }

// topNRow wraps a materialized row for topNOperator's bounded heap.
type topNRow struct {
	row Row
}

type topNHeap struct {
	rows []topNRow
	keys []plan.SortKey
}

func (h topNHeap) Len() int { return len(h.rows) }
func (h topNHeap) Less(i, j int) bool {
	// A max-heap on "worse than" so Pop discards the current worst row,
	// keeping the best Count rows seen so far — lessRows(i,j) true means i
	// sorts before j (i is better), so the heap root (index 0) must be the
	// worst: invert the comparator.
	return lessRows(h.rows[j].row, h.rows[i].row, h.keys)
}
func (h topNHeap) Swap(i, j int)      { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }
func (h *topNHeap) Push(x interface{}) { h.rows = append(h.rows, x.(topNRow)) }
func (h *topNHeap) Pop() interface{} {
	old := h.rows
	n := len(old)
	item := old[n-1]
	h.rows = old[:n-1]
	return item
}

// topNOperator keeps only the best Count rows under TopNAttrs.Keys using a
// bounded max-heap of size Count, avoiding a full sort of the input (spec
// §4.4 "ORDER BY/SKIP/LIMIT ... coalesced into TopN when adjacent").
type topNOperator struct {
	baseStats
	child Operator
	keys  []plan.SortKey
	count int64
	rows  []Row
	pos   int
}

func newTopNOperator(n *plan.Node, child Operator) (*topNOperator, error) {
	a, ok := n.Attrs.(plan.TopNAttrs)
	if !ok {
		return nil, badAttrs(n, "TopNAttrs")
	}
	return &topNOperator{child: child, keys: a.Keys, count: a.Count}, nil
}

func (t *topNOperator) Open(ctx context.Context) error {
	t.onOpen()
	if err := t.child.Open(ctx); err != nil {
		return err
	}
	if t.count <= 0 {
		t.rows = nil
		t.pos = 0
		return nil
	}
	h := &topNHeap{keys: t.keys}
	for {
		r, err := t.child.Next(ctx)
		if err != nil {
			return err
		}
		if r == nil {
			break
		}
		if int64(h.Len()) < t.count {
			heap.Push(h, topNRow{row: r})
		} else if lessRows(r, h.rows[0].row, t.keys) {
			heap.Pop(h)
			heap.Push(h, topNRow{row: r})
		}
	}
	out := make([]Row, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(topNRow).row
	}
	t.rows = out
	t.pos = 0
	return nil
}

func (t *topNOperator) Next(ctx context.Context) (Row, error) {
	if t.pos >= len(t.rows) {
		return nil, nil
	}
	r := t.rows[t.pos]
	t.pos++
	t.onRow()
	return r, nil
}

func (t *topNOperator) Close() error { t.onClose(); return t.child.Close() }
func (t *topNOperator) Stats() Stats { return t.stats() }

// sampleOperator materializes its child and returns a uniform random
// subset of at most Count rows, via a partial Fisher-Yates shuffle.
type sampleOperator struct {
	baseStats
	child Operator
	count int64
	rows  []Row
	pos   int
}

func newSampleOperator(n *plan.Node, child Operator) (*sampleOperator, error) {
	a, ok := n.Attrs.(plan.SampleAttrs)
	if !ok {
		return nil, badAttrs(n, "SampleAttrs")
	}
	return &sampleOperator{child: child, count: a.Count}, nil
}

func (s *sampleOperator) Open(ctx context.Context) error {
	s.onOpen()
	if err := s.child.Open(ctx); err != nil {
		return err
	}
	rows, err := drain(ctx, s.child)
	if err != nil {
		return err
	}
	n := int64(len(rows))
	if s.count >= 0 && s.count < n {
		for i := int64(0); i < s.count; i++ {
			j := i + int64(rand.Intn(int(n-i)))
			rows[i], rows[j] = rows[j], rows[i]
		}
		rows = rows[:s.count]
	}
	s.rows = rows
	s.pos = 0
	return nil
}

func (s *sampleOperator) Next(ctx context.Context) (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	r := s.rows[s.pos]
	s.pos++
	s.onRow()
	return r, nil
}

func (s *sampleOperator) Close() error { s.onClose(); return s.child.Close() }
func (s *sampleOperator) Stats() Stats { return s.stats() }

// dedupOperator admits the first row seen for each distinct key (the whole
// row when DedupAttrs.Columns is empty) and discards later duplicates,
// streaming rather than materializing its output.
type dedupOperator struct {
	baseStats
	child   Operator
	columns []string
	seen    map[string]bool
}

func newDedupOperator(n *plan.Node, child Operator) (*dedupOperator, error) {
	a, ok := n.Attrs.(plan.DedupAttrs)
	if !ok {
		return nil, badAttrs(n, "DedupAttrs")
	}
	return &dedupOperator{child: child, columns: a.Columns}, nil
}

func (d *dedupOperator) Open(ctx context.Context) error {
	d.onOpen()
	d.seen = map[string]bool{}
	return d.child.Open(ctx)
}

func (d *dedupOperator) Next(ctx context.Context) (Row, error) {
	for {
		r, err := d.child.Next(ctx)
		if err != nil || r == nil {
			return r, err
		}
		key := rowKeyCols(r, d.columns)
		if len(d.columns) == 0 {
			key = rowKey(r)
		}
		if d.seen[key] {
			continue
		}
		d.seen[key] = true
		d.onRow()
		return r, nil
	}
}

func (d *dedupOperator) Close() error { d.onClose(); return d.child.Close() }
func (d *dedupOperator) Stats() Stats { return d.stats() }
