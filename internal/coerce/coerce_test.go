package coerce

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecimal(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "0"},
		{json.Number("19.99"), "19.99"},
		{" 7.5 ", "7.5"},
		{"abc", "0"},
		{12.25, "12.25"},
		{math.NaN(), "0"},
		{math.Inf(1), "0"},
		{3, "3"},
		{int64(-4), "-4"},
		{true, "0"},
		{[]any{1}, "0"},
	}
	for _, c := range cases {
		got := Decimal(c.in)
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "Decimal(%#v) = %s, want %s", c.in, got, c.want)
	}
}

func TestString(t *testing.T) {
	s, ok := String(nil)
	assert.False(t, ok)
	assert.Empty(t, s)

	s, ok = String("abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	s, _ = String(json.Number("123456789012345678"))
	assert.Equal(t, "123456789012345678", s)

	s, _ = String(float64(42))
	assert.Equal(t, "42", s)
}

func TestTime(t *testing.T) {
	ts, ok := Time("2026-10-01T18:30:00")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 1, 18, 30, 0, 0, time.UTC), ts)

	ts, ok = Time("2026-10-01T18:30:00-06:00")
	assert.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2026, 10, 2, 0, 30, 0, 0, time.UTC)))

	ts, ok = Time("2026-10-01 18:30:00.123+00")
	assert.True(t, ok)
	assert.Equal(t, 123000000, ts.Nanosecond())

	_, ok = Time("yesterday")
	assert.False(t, ok)
	_, ok = Time(nil)
	assert.False(t, ok)
}
