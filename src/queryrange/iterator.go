// Package queryrange finds every non-overlapping occurrence of a query in a
// content string and exposes the occurrences as a lazy sequence of byte ranges.
//
// Offsets are byte offsets into the Go string, so a Range can always be used
// to slice the content it was produced for.
//
//	it := queryrange.New("needle", "haystackneedlehaystackneedlehaystack")
//	for r := range it.All() {
//		fmt.Println(r, r.Slice(content))
//	}
package queryrange

import (
	"iter"
	"strings"
)

// Iterator walks a content string left to right, yielding either the ranges
// that match the query or, when inverted, the non-empty spans between them.
//
// An Iterator is a forward-only cursor and is not safe for concurrent use.
// Separate iterators over the same content can be used from different
// goroutines.
type Iterator struct {
	query    string
	content  string
	cursor   int
	inverted bool
	done     bool
}

func newIterator(query, content string, inverted bool) *Iterator {
	return &Iterator{
		query:    query,
		content:  content,
		inverted: inverted,
	}
}

// New creates an iterator over every occurrence of query in content.
// An empty query matches nothing.
func New(query, content string) *Iterator {
	return newIterator(query, content, false)
}

// NewInverted creates an iterator over the content in between each
// occurrence of query. Empty spans are skipped, so adjacent matches or a match
// at either end of the content produce no range. An empty query yields the
// whole content as a single span.
func NewInverted(query, content string) *Iterator {
	return newIterator(query, content, true)
}

// Query returns the query the iterator searches for
func (it *Iterator) Query() string {
	return it.query
}

// Content returns the content the iterator scans
func (it *Iterator) Content() string {
	return it.content
}

// Next returns the next range. The second result is false once the sequence
// is exhausted, and stays false on every later call.
func (it *Iterator) Next() (Range, bool) {
	if it.done {
		return Range{}, false
	}
	if it.inverted {
		return it.nextInverted()
	}
	return it.nextStandard()
}

// nextStandard finds the leftmost occurrence at or after the cursor
func (it *Iterator) nextStandard() (Range, bool) {
	if it.query == "" {
		it.done = true
		return Range{}, false
	}

	idx := strings.Index(it.content[it.cursor:], it.query)
	if idx < 0 {
		it.done = true
		return Range{}, false
	}

	start := it.cursor + idx
	r := NewRange(start, start+len(it.query))
	it.cursor = r.End
	return r, true
}

// nextInverted returns the next non-empty span that is not part of a match
func (it *Iterator) nextInverted() (Range, bool) {
	for it.cursor < len(it.content) {
		idx := -1
		if it.query != "" {
			idx = strings.Index(it.content[it.cursor:], it.query)
		}

		if idx < 0 {
			r := NewRange(it.cursor, len(it.content))
			it.cursor = len(it.content)
			it.done = true
			return r, true
		}

		start := it.cursor + idx
		r := NewRange(it.cursor, start)
		it.cursor = start + len(it.query)
		if !r.IsEmpty() {
			return r, true
		}
	}

	it.done = true
	return Range{}, false
}

// All returns the remaining ranges as a range-over-func sequence. The sequence
// shares the iterator's cursor, so it can only be consumed once.
func (it *Iterator) All() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for {
			r, ok := it.Next()
			if !ok || !yield(r) {
				return
			}
		}
	}
}

// CollectRanges drains the iterator into a slice
func (it *Iterator) CollectRanges() []Range {
	var ranges []Range
	for r := range it.All() {
		ranges = append(ranges, r)
	}
	return ranges
}

// CollectStrings drains the iterator and returns the content at each range
func (it *Iterator) CollectStrings() []string {
	var values []string
	for r := range it.All() {
		values = append(values, r.Slice(it.content))
	}
	return values
}
