package queryrange

import "fmt"

// Range represents a half-open byte range [Start, End) within a content string
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// NewRange creates a new Range.
func NewRange(start, end int) Range {
	return Range{
		Start: start,
		End:   end,
	}
}

// Contains checks if a position is within the range
func (r Range) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// Len returns the length of the range
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no bytes
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Slice returns the part of content covered by the range.
// The range must have been produced for this same content; slicing a
// different string with it is undefined and may panic.
func (r Range) Slice(content string) string {
	return content[r.Start:r.End]
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
