package queryrange

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRange(t *testing.T) {
	r, ok := GetRange("needle", needles)
	require.True(t, ok)
	require.Equal(t, NewRange(8, 14), r)

	_, ok = GetRange("needle", "haystack")
	require.False(t, ok)

	_, ok = GetRange("", "haystack")
	require.False(t, ok)
}

func TestShiftRange(t *testing.T) {
	testCases := []struct {
		name     string
		r        Range
		shift    Shift
		expected Range
		ok       bool
	}{
		{name: "Up", r: NewRange(0, 5), shift: Up(2), expected: NewRange(2, 7), ok: true},
		{name: "UpFar", r: NewRange(0, 5), shift: Up(20), expected: NewRange(20, 25), ok: true},
		{name: "Down", r: NewRange(4, 7), shift: Down(3), expected: NewRange(1, 4), ok: true},
		{name: "DownUnderflow", r: NewRange(2, 7), shift: Down(3), ok: false},
		{name: "UpOverflow", r: NewRange(0, math.MaxInt), shift: Up(1), ok: false},
		{name: "NegativeAmount", r: NewRange(0, 5), shift: Shift{Amount: -1}, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ShiftRange(tc.r, tc.shift)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.expected, got)
			}
		})
	}

	shifted, _ := ShiftRange(NewRange(0, 5), Up(2))
	back, ok := ShiftRange(shifted, Down(3))
	require.False(t, ok, "start would go below zero, got %v", back)
}

func TestShiftRangeInContent(t *testing.T) {
	content := "this is a test"

	r, ok := ShiftRangeInContent(NewRange(0, 5), Up(2), content)
	require.True(t, ok)
	require.Equal(t, NewRange(2, 7), r)

	_, ok = ShiftRangeInContent(NewRange(0, 5), Up(20), content)
	require.False(t, ok)
}

func TestIsWithin(t *testing.T) {
	content := "012345"

	require.True(t, IsWithin(content, NewRange(0, 2)))
	require.True(t, IsWithin(content, NewRange(6, 6)))
	require.False(t, IsWithin(content, NewRange(2, 7)))
	require.False(t, IsWithin(content, NewRange(-1, 2)))
	require.False(t, IsWithin(content, NewRange(4, 3)))
}

func TestRange(t *testing.T) {
	r := NewRange(8, 14)

	require.Equal(t, 6, r.Len())
	require.False(t, r.IsEmpty())
	require.True(t, r.Contains(8))
	require.False(t, r.Contains(14))
	require.Equal(t, "needle", r.Slice(needles))
	require.Equal(t, "[8, 14)", r.String())
	require.True(t, NewRange(3, 3).IsEmpty())
}
