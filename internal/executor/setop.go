// Set family (spec §4.6): Union, Intersect, Minus. All three materialize
// every child fully before producing output, since membership across the
// whole input determines whether any given row survives. Row identity is
// the rowKey encoding from util.go (column-name + typed-value string), so
// two rows with the same columns bound to equal values are the same row
// regardless of map iteration or child order.
//
// No plan.Attrs type parameterizes these nodes (attrs.go defines none for
// KindUnion/KindIntersect/KindMinus), so Union always deduplicates — there
// is no ALL variant to opt out of it, matching openCypher's plain UNION.
package executor

import "context"

type unionOperator struct {
	baseStats
	children []Operator
	rows     []Row
	pos      int
}

func newUnionOperator(children []Operator) (*unionOperator, error) {
	return &unionOperator{children: children}, nil
}

func (u *unionOperator) Open(ctx context.Context) error {
	u.onOpen()
	seen := map[string]bool{}
	var out []Row
	for _, c := range u.children {
		if err := c.Open(ctx); err != nil {
			return err
		}
		rows, err := drain(ctx, c)
		if err != nil {
			return err
		}
		if err := c.Close(); err != nil {
			return err
		}
		for _, r := range rows {
			k := rowKey(r)
			if !seen[k] {
				seen[k] = true
				out = append(out, r)
			}
		}
	}
	u.rows = out
	u.pos = 0
	return nil
}

func (u *unionOperator) Next(ctx context.Context) (Row, error) {
	if u.pos >= len(u.rows) {
		return nil, nil
	}
	r := u.rows[u.pos]
	u.pos++
	u.onRow()
	return r, nil
}

func (u *unionOperator) Close() error { u.onClose(); return nil }
func (u *unionOperator) Stats() Stats { return u.stats() }

// intersectOperator keeps the distinct rows of its first child that also
// appear (by rowKey) in every other child.
type intersectOperator struct {
	baseStats
	children []Operator
	rows     []Row
	pos      int
}

func newIntersectOperator(children []Operator) (*intersectOperator, error) {
	return &intersectOperator{children: children}, nil
}

func (i *intersectOperator) Open(ctx context.Context) error {
	i.onOpen()
	if len(i.children) == 0 {
		i.rows, i.pos = nil, 0
		return nil
	}
	keySets := make([]map[string]bool, len(i.children))
	var firstRows []Row
	for idx, c := range i.children {
		if err := c.Open(ctx); err != nil {
			return err
		}
		rows, err := drain(ctx, c)
		if err != nil {
			return err
		}
		if err := c.Close(); err != nil {
			return err
		}
		keys := map[string]bool{}
		for _, r := range rows {
			keys[rowKey(r)] = true
		}
		keySets[idx] = keys
		if idx == 0 {
			firstRows = rows
		}
	}

	seen := map[string]bool{}
	var out []Row
	for _, r := range firstRows {
		k := rowKey(r)
		if seen[k] {
			continue
		}
		inAll := true
		for _, keys := range keySets[1:] {
			if !keys[k] {
				inAll = false
				break
			}
		}
		if inAll {
			seen[k] = true
			out = append(out, r)
		}
	}
	i.rows = out
	i.pos = 0
	return nil
}

func (i *intersectOperator) Next(ctx context.Context) (Row, error) {
	if i.pos >= len(i.rows) {
		return nil, nil
	}
	r := i.rows[i.pos]
	i.pos++
	i.onRow()
	return r, nil
}

func (i *intersectOperator) Close() error { i.onClose(); return nil }
func (i *intersectOperator) Stats() Stats { return i.stats() }

// minusOperator keeps the distinct rows of its first child that appear in
// none of the remaining children.
type minusOperator struct {
	baseStats
	children []Operator
	rows     []Row
	pos      int
}

func newMinusOperator(children []Operator) (*minusOperator, error) {
	return &minusOperator{children: children}, nil
}

func (m *minusOperator) Open(ctx context.Context) error {
	m.onOpen()
	if len(m.children) == 0 {
		m.rows, m.pos = nil, 0
		return nil
	}
	first := m.children[0]
	if err := first.Open(ctx); err != nil {
		return err
	}
	firstRows, err := drain(ctx, first)
	if err != nil {
		return err
	}
	if err := first.Close(); err != nil {
		return err
	}

	exclude := map[string]bool{}
	for _, c := range m.children[1:] {
		if err := c.Open(ctx); err != nil {
			return err
		}
		rows, err := drain(ctx, c)
		if err != nil {
			return err
		}
		if err := c.Close(); err != nil {
			return err
		}
		for _, r := range rows {
			exclude[rowKey(r)] = true
		}
	}

	seen := map[string]bool{}
	var out []Row
	for _, r := range firstRows {
		k := rowKey(r)
		if seen[k] || exclude[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	m.rows = out
	m.pos = 0
	return nil
}

func (m *minusOperator) Next(ctx context.Context) (Row, error) {
	if m.pos >= len(m.rows) {
		return nil, nil
	}
	r := m.rows[m.pos]
	m.pos++
	m.onRow()
	return r, nil
}

func (m *minusOperator) Close() error { m.onClose(); return nil }
func (m *minusOperator) Stats() Stats { return m.stats() }
