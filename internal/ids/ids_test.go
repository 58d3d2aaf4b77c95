package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMurmurHash2Deterministic(t *testing.T) {
	h1 := MurmurHash2String("hello world", 0)
	h2 := MurmurHash2String("hello world", 0)
	assert.Equal(t, h1, h2)

	h3 := MurmurHash2String("hello world", 1)
	assert.NotEqual(t, h1, h3, "different seeds should (almost always) diverge")
}

func TestVertexIdFromStringStable(t *testing.T) {
	a := VertexIdFromString("user:alice")
	b := VertexIdFromString("user:alice")
	c := VertexIdFromString("user:bob")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, a.Valid())
	assert.False(t, VertexId(0).Valid())
}

func TestIdStringers(t *testing.T) {
	assert.Equal(t, "v42", VertexId(42).String())
	assert.Equal(t, "e7", EdgeId(7).String())
	assert.Equal(t, "tag3", TagId(3).String())
	assert.Equal(t, "space1", SpaceId(1).String())
}
