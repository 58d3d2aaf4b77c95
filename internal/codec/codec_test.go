package codec

import (
	"testing"

	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexKeyOrdering(t *testing.T) {
	k1 := VertexKey(1, 5)
	k2 := VertexKey(1, 10)
	assert.True(t, string(k1) < string(k2), "big-endian vertex ids must sort numerically")
}

func TestEdgeDualityKeys(t *testing.T) {
	out := EdgeOutKey(1, 10, 2, 0, 20)
	in := EdgeInKey(1, 20, 2, 0, 10)
	assert.NotEqual(t, out, in)

	space, src, et, rank, dst, ok := DecodeEdgeOutKey(out)
	require.True(t, ok)
	assert.EqualValues(t, 1, space)
	assert.EqualValues(t, 10, src)
	assert.EqualValues(t, 2, et)
	assert.EqualValues(t, 0, rank)
	assert.EqualValues(t, 20, dst)
}

func TestEdgeOutPrefixScan(t *testing.T) {
	prefix := EdgeOutPrefix(1, 10, 2)
	key := EdgeOutKey(1, 10, 2, 5, 99)
	assert.True(t, hasPrefix(key, prefix))

	other := EdgeOutKey(1, 11, 2, 5, 99)
	assert.False(t, hasPrefix(other, prefix))
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func TestOrderedInt64RoundTripAndOrdering(t *testing.T) {
	vals := []int64{-100, -1, 0, 1, 100, 1 << 40}
	var encoded [][]byte
	for _, v := range vals {
		enc := EncodeOrderedInt64(v)
		assert.Equal(t, v, DecodeOrderedInt64(enc))
		encoded = append(encoded, enc)
	}
	for i := 1; i < len(encoded); i++ {
		assert.True(t, string(encoded[i-1]) < string(encoded[i]), "ordering must match numeric ordering")
	}
}

func TestOrderedFloat64RoundTripAndOrdering(t *testing.T) {
	vals := []float64{-10.5, -0.001, 0, 0.001, 10.5}
	var encoded [][]byte
	for _, v := range vals {
		enc := EncodeOrderedFloat64(v)
		assert.InDelta(t, v, DecodeOrderedFloat64(enc), 1e-12)
		encoded = append(encoded, enc)
	}
	for i := 1; i < len(encoded); i++ {
		assert.True(t, string(encoded[i-1]) < string(encoded[i]))
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []value.Value{
		value.Null(),
		value.Bool(true),
		value.Int(-42),
		value.Float(3.14),
		value.String("hello"),
		value.List([]value.Value{value.Int(1), value.String("x")}),
		value.Map(map[string]value.Value{"a": value.Int(1)}),
	}
	for _, v := range cases {
		raw, err := EncodeValueJSON(v)
		require.NoError(t, err)
		back, err := DecodeValueJSON(raw)
		require.NoError(t, err)
		assert.True(t, v.Equal(back), "round trip for kind %s", v.Kind)
	}
}

func TestVertexCodecRoundTrip(t *testing.T) {
	v := &graph.Vertex{
		ID: 42,
		Tags: []graph.TagInstance{
			{Tag: 1, Properties: map[string]value.Value{"name": value.String("Alice"), "age": value.Int(30)}},
		},
	}
	raw, err := EncodeVertex(v)
	require.NoError(t, err)
	back, err := DecodeVertex(raw)
	require.NoError(t, err)
	assert.Equal(t, v.ID, back.ID)
	require.Len(t, back.Tags, 1)
	assert.True(t, v.Tags[0].Properties["name"].Equal(back.Tags[0].Properties["name"]))
}

func TestEdgeCodecRoundTrip(t *testing.T) {
	e := &graph.Edge{Src: 1, Dst: 2, Type: 3, Ranking: 0, Properties: map[string]value.Value{"since": value.Int(2020)}}
	raw, err := EncodeEdge(e)
	require.NoError(t, err)
	back, err := DecodeEdge(raw)
	require.NoError(t, err)
	assert.Equal(t, e.Src, back.Src)
	assert.Equal(t, e.Dst, back.Dst)
	assert.Equal(t, e.Type, back.Type)
}

func TestEncodeIndexColumnsOrdering(t *testing.T) {
	a := EncodeIndexColumns([]value.Value{value.Int(1)})
	b := EncodeIndexColumns([]value.Value{value.Int(2)})
	assert.True(t, string(a) < string(b))
}

var _ = ids.SpaceId(0)
