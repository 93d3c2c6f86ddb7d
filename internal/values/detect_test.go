package values

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty(0))
	assert.False(t, IsEmpty(false))
	assert.False(t, IsEmpty("x"))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-02-29")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, v := range []any{"2023-02-29", "2024-1-05", "2024-01-05T10:00:00Z", " 2024-01-05", time.Now(), 20240105} {
		_, ok := ParseDate(v)
		assert.False(t, ok, "%v", v)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{42, 42, true},
		{int64(-3), -3, true},
		{2.5, 2.5, true},
		{" 7.25 ", 7.25, true},
		{json.Number("12"), 12, true},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestKinds(t *testing.T) {
	assert.True(t, IsNumberKind(uint8(1)))
	assert.False(t, IsNumberKind("1"))
	assert.True(t, IsBoolean(false))
	assert.True(t, IsBoolean("true"))
	assert.False(t, IsBoolean("True"))
	assert.False(t, IsBoolean(1))
}
