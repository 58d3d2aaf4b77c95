package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

func TestSelectivityDefaults(t *testing.T) {
	assert.InDelta(t, 0.01, EqualitySelectivity(100), 1e-9)
	assert.Equal(t, 0.5, RangeSelectivity(0.5))
	assert.InDelta(t, 0.25, ConjunctionSelectivity(0.5, 0.5), 1e-9)
	assert.InDelta(t, 0.75, DisjunctionSelectivity(0.5, 0.5), 1e-9)
	assert.Equal(t, 1.0, ConjunctionSelectivity())
}

func TestCostModelProfilesDiffer(t *testing.T) {
	def := ForProfile(ProfileDefault)
	ssd := ForProfile(ProfileForSSD)
	mem := ForProfile(ProfileForMemory)
	assert.Greater(t, def.RandomPageCost, def.SeqPageCost)
	assert.Less(t, ssd.RandomPageCost-ssd.SeqPageCost, def.RandomPageCost-def.SeqPageCost)
	assert.Less(t, mem.SeqPageCost, def.SeqPageCost)
}

func TestBuildMemoAndExtractBestRoundTrips(t *testing.T) {
	scan := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"n"}, Attrs: plan.ScanAttrs{Tag: 1}}
	filter := &plan.Node{Kind: plan.KindFilter, Children: []*plan.Node{scan}, OutputCols: []string{"n"},
		Attrs: plan.FilterAttrs{Predicate: expr.Binary(expr.OpGt, expr.Var("n"), expr.Lit(value.Int(1)))}}

	memo, rootID := BuildMemo(filter)
	idGen := plan.NewIDGenerator()
	best := ExtractBest(memo, rootID, idGen)
	require.NotNil(t, best)
	assert.Equal(t, plan.KindFilter, best.Kind)
	require.Len(t, best.Children, 1)
	assert.Equal(t, plan.KindScan, best.Children[0].Kind)
}

func TestOptimizeChoosesIndexScanOverSequentialWhenIndexed(t *testing.T) {
	stats := NewInMemoryStatistics()
	stats.SetRowCount("tag:1", 1_000_000)
	scan := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"n"},
		Attrs: plan.ScanAttrs{Tag: 1, Index: 7, SeekKey: []expr.Expr{*expr.Lit(value.Int(42))}}}

	opt := New(ProfileDefault, stats, 3, 3)
	idGen := plan.NewIDGenerator()
	best, err := opt.Optimize(scan, idGen)
	require.NoError(t, err)
	assert.Equal(t, plan.KindIndexScan, best.Kind)
}

func TestOptimizeFallsBackToSequentialWithoutIndex(t *testing.T) {
	stats := NewInMemoryStatistics()
	scan := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"n"}, Attrs: plan.ScanAttrs{Tag: 2}}

	opt := New(ProfileDefault, stats, 3, 3)
	idGen := plan.NewIDGenerator()
	best, err := opt.Optimize(scan, idGen)
	require.NoError(t, err)
	assert.Equal(t, plan.KindSequentialScan, best.Kind)
}

func TestOptimizeChoosesHashJoinForEquijoinOfLargeInputs(t *testing.T) {
	stats := NewInMemoryStatistics()
	stats.SetRowCount("tag:1", 100000)
	stats.SetRowCount("tag:2", 100000)
	left := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"a"}, Attrs: plan.ScanAttrs{Tag: 1}}
	right := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"b"}, Attrs: plan.ScanAttrs{Tag: 2}}
	join := &plan.Node{Kind: plan.KindInnerJoin, Children: []*plan.Node{left, right}, OutputCols: []string{"a", "b"},
		Attrs: plan.JoinAttrs{On: expr.Binary(expr.OpEq, expr.Var("a"), expr.Var("b"))}}

	opt := New(ProfileDefault, stats, 3, 3)
	idGen := plan.NewIDGenerator()
	best, err := opt.Optimize(join, idGen)
	require.NoError(t, err)
	assert.Equal(t, plan.KindHashJoin, best.Kind)
}

func TestOptimizeReordersSmallSideFirstForCrossJoin(t *testing.T) {
	stats := NewInMemoryStatistics()
	stats.SetRowCount("tag:1", 1000)
	stats.SetRowCount("tag:2", 10)
	big := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"a"}, Attrs: plan.ScanAttrs{Tag: 1}}
	small := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"b"}, Attrs: plan.ScanAttrs{Tag: 2}}
	join := &plan.Node{Kind: plan.KindCrossJoin, Children: []*plan.Node{big, small}, OutputCols: []string{"a", "b"},
		Attrs: plan.JoinAttrs{}}

	opt := New(ProfileDefault, stats, 3, 3)
	idGen := plan.NewIDGenerator()
	best, err := opt.Optimize(join, idGen)
	require.NoError(t, err)
	require.Len(t, best.Children, 2)
	smallAttrs := best.Children[0].Attrs.(plan.ScanAttrs)
	assert.Equal(t, ids.TagId(2), smallAttrs.Tag)
}

func TestFingerprintStableAfterExtractBest(t *testing.T) {
	scan := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"n"}, Attrs: plan.ScanAttrs{Tag: 9}}
	opt := New(ProfileDefault, nil, 2, 2)
	idGen := plan.NewIDGenerator()
	best1, err := opt.Optimize(scan, idGen)
	require.NoError(t, err)

	scan2 := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"n"}, Attrs: plan.ScanAttrs{Tag: 9}}
	best2, err := opt.Optimize(scan2, plan.NewIDGenerator())
	require.NoError(t, err)
	assert.Equal(t, plan.Fingerprint(best1), plan.Fingerprint(best2))
}
