package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/value"
)

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator()
	a := g.Next()
	b := g.Next()
	assert.Equal(t, a+1, b)
}

func TestValidateRequiredColsAccepts(t *testing.T) {
	scan := &Node{ID: 1, Kind: KindScan, OutputCols: []string{"n"}}
	filter := &Node{ID: 2, Kind: KindFilter, Children: []*Node{scan}, OutputCols: []string{"n"},
		Properties: NodeProperties{RequiredCols: []string{"n"}}}
	assert.NoError(t, ValidateRequiredCols(filter))
}

func TestValidateRequiredColsRejectsMissingColumn(t *testing.T) {
	scan := &Node{ID: 1, Kind: KindScan, OutputCols: []string{"n"}}
	filter := &Node{ID: 2, Kind: KindFilter, Children: []*Node{scan}, OutputCols: []string{"n"},
		Properties: NodeProperties{RequiredCols: []string{"missing"}}}
	err := ValidateRequiredCols(filter)
	require.Error(t, err)
}

func TestFingerprintIgnoresIdsAndCost(t *testing.T) {
	scanA := &Node{ID: 1, Kind: KindScan, OutputCols: []string{"n"}, Cost: 10, Attrs: ScanAttrs{Space: 1, Tag: 1}}
	scanB := &Node{ID: 99, Kind: KindScan, OutputCols: []string{"n"}, Cost: 999, Attrs: ScanAttrs{Space: 1, Tag: 1}}
	assert.Equal(t, Fingerprint(scanA), Fingerprint(scanB))
}

func TestFingerprintDiffersOnStructure(t *testing.T) {
	a := &Node{ID: 1, Kind: KindScan, OutputCols: []string{"n"}, Attrs: ScanAttrs{Space: 1, Tag: 1}}
	b := &Node{ID: 1, Kind: KindScan, OutputCols: []string{"n"}, Attrs: ScanAttrs{Space: 1, Tag: 2}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintStableAcrossChildOrderPreservingEquality(t *testing.T) {
	filter := &Node{
		ID: 1, Kind: KindFilter, OutputCols: []string{"n"},
		Attrs: FilterAttrs{Predicate: expr.Binary(expr.OpGt, expr.Var("age"), expr.Lit(value.Int(21)))},
	}
	filter2 := &Node{
		ID: 2, Kind: KindFilter, OutputCols: []string{"n"},
		Attrs: FilterAttrs{Predicate: expr.Binary(expr.OpGt, expr.Var("age"), expr.Lit(value.Int(21)))},
	}
	assert.Equal(t, Fingerprint(filter), Fingerprint(filter2))
}
