package queryrange

import (
	"math"
	"strings"
)

// GetRange returns the range of the first occurrence of query in content
func GetRange(query, content string) (Range, bool) {
	if query == "" {
		return Range{}, false
	}
	start := strings.Index(content, query)
	if start < 0 {
		return Range{}, false
	}
	return NewRange(start, start+len(query)), true
}

// Shift moves a position or range up or down by Amount
type Shift struct {
	Amount int
	Down   bool
}

// Up creates a shift towards the end of the content
func Up(amount int) Shift {
	return Shift{Amount: amount}
}

// Down creates a shift towards the start of the content
func Down(amount int) Shift {
	return Shift{Amount: amount, Down: true}
}

// apply shifts a single offset. It fails if the result would be negative or
// overflow an int.
func (s Shift) apply(n int) (int, bool) {
	if s.Amount < 0 {
		return 0, false
	}
	if s.Down {
		if n < s.Amount {
			return 0, false
		}
		return n - s.Amount, true
	}
	if n > math.MaxInt-s.Amount {
		return 0, false
	}
	return n + s.Amount, true
}

// ShiftRange creates a new range with both ends shifted by s
func ShiftRange(r Range, s Shift) (Range, bool) {
	start, ok := s.apply(r.Start)
	if !ok {
		return Range{}, false
	}
	end, ok := s.apply(r.End)
	if !ok {
		return Range{}, false
	}
	return NewRange(start, end), true
}

// ShiftRangeInContent shifts r like ShiftRange and additionally requires the
// result to be a valid range of content.
func ShiftRangeInContent(r Range, s Shift, content string) (Range, bool) {
	shifted, ok := ShiftRange(r, s)
	if !ok || !IsWithin(content, shifted) {
		return Range{}, false
	}
	return shifted, true
}

// IsWithin checks that r can be used to slice content
func IsWithin(content string, r Range) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= len(content)
}
