package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqualAcrossVariants(t *testing.T) {
	assert.True(t, Int(5).Equal(Int(5)))
	assert.True(t, Int(5).Equal(Float(5.0)), "int/float cross-kind equality")
	assert.False(t, Int(5).Equal(String("5")))
	assert.True(t, Null().Equal(Null()))

	l1 := List([]Value{Int(1), String("a")})
	l2 := List([]Value{Int(1), String("a")})
	l3 := List([]Value{Int(1), String("b")})
	assert.True(t, l1.Equal(l2))
	assert.False(t, l1.Equal(l3))

	m1 := Map(map[string]Value{"x": Int(1)})
	m2 := Map(map[string]Value{"x": Int(1)})
	assert.True(t, m1.Equal(m2))
}

func TestValueCompare(t *testing.T) {
	c, ok := Int(1).Compare(Int(2))
	require.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = String("b").Compare(String("a"))
	require.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = List(nil).Compare(List(nil))
	assert.False(t, ok, "lists are not orderable")

	_, ok = Int(1).Compare(String("x"))
	assert.False(t, ok)
}

func TestDateRoundTrip(t *testing.T) {
	cases := []Date{
		{Year: 1970, Month: 1, Day: 1},
		{Year: 2024, Month: 2, Day: 29}, // leap day
		{Year: 1900, Month: 3, Day: 1},
		{Year: 2100, Month: 12, Day: 31},
		{Year: 1, Month: 1, Day: 1},
	}
	for _, d := range cases {
		days := DateToDays(d)
		got := DaysToDate(days)
		assert.Equal(t, d, got, "round trip for %+v", d)
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 34, 56, 789000, time.UTC)
	ts := DateTimeToTimestamp(now)
	back := TimestampToDateTime(ts)
	assert.True(t, now.Equal(back))
}
