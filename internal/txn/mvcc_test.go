package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockIsMonotonicAndStartsAtOne(t *testing.T) {
	c := NewClock()
	assert.Equal(t, uint64(0), c.Now())
	first := c.Tick()
	second := c.Tick()
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Less(t, first, second)
}

func TestVersionChainReadAtSelectsNewestAtOrBeforeSnapshot(t *testing.T) {
	vc := NewVersionChain(0)
	vc.Append(1, []byte("v1"), false)
	vc.Append(3, []byte("v3"), false)
	vc.Append(5, []byte("v5"), false)

	v, ok := vc.ReadAt(4)
	require.True(t, ok)
	assert.Equal(t, "v3", string(v), "reader at ts=4 must see the version committed at ts=3, not ts=5")

	v, ok = vc.ReadAt(0)
	assert.False(t, ok, "no version exists before the first write")
	_ = v
}

func TestVersionChainTombstoneHidesValue(t *testing.T) {
	vc := NewVersionChain(0)
	vc.Append(1, []byte("v1"), false)
	vc.Append(2, nil, true)

	_, ok := vc.ReadAt(5)
	assert.False(t, ok, "a snapshot taken after a delete must not observe the old value")

	v, ok := vc.ReadAt(1)
	require.True(t, ok)
	assert.Equal(t, "v1", string(v))
}

func TestVersionChainBoundedLength(t *testing.T) {
	vc := NewVersionChain(2)
	vc.Append(1, []byte("v1"), false)
	vc.Append(2, []byte("v2"), false)
	vc.Append(3, []byte("v3"), false)
	assert.Equal(t, 2, vc.Len(), "chain must not retain more than maxLen versions")

	_, ok := vc.ReadAt(1)
	assert.False(t, ok, "the oldest version should have been evicted")
}

func TestVersionChainCollapseReclaimsOldVersions(t *testing.T) {
	vc := NewVersionChain(0)
	vc.Append(1, []byte("v1"), false)
	vc.Append(2, []byte("v2"), false)
	vc.Append(3, []byte("v3"), false)

	vc.Collapse(2)
	assert.Equal(t, 2, vc.Len(), "versions newer than the watermark, plus the newest at-or-before it, survive")

	v, ok := vc.ReadAt(2)
	require.True(t, ok)
	assert.Equal(t, "v2", string(v))
}
