package queryrange

import "strings"

// Func transforms a piece of content. Transforms are expected to be pure.
type Func func(string) string

// Identity returns s unchanged
func Identity(s string) string {
	return s
}

// TransformAll reassembles content, applying matchFn to every occurrence of
// query and otherFn to every non-empty span in between, including the spans
// before the first and after the last occurrence.
//
// With Identity for both transforms the result equals content.
func TransformAll(query, content string, matchFn, otherFn Func) string {
	var b strings.Builder
	b.Grow(len(content))

	pos := 0
	for r := range New(query, content).All() {
		if r.Start > pos {
			b.WriteString(otherFn(content[pos:r.Start]))
		}
		b.WriteString(matchFn(r.Slice(content)))
		pos = r.End
	}

	if pos < len(content) {
		b.WriteString(otherFn(content[pos:]))
	}

	return b.String()
}

// TransformQuery reassembles content with every occurrence of query transformed
// and everything else left as is.
//
//	TransformQuery("needle", "haystackneedlehaystack", strings.ToUpper)
//	// "haystackNEEDLEhaystack"
func TransformQuery(query, content string, fn Func) string {
	return TransformAll(query, content, fn, Identity)
}

// TransformOther reassembles content with everything but the occurrences of
// query transformed.
func TransformOther(query, content string, fn Func) string {
	return TransformAll(query, content, Identity, fn)
}

// Transform reassembles content with fn applied to the occurrences of query,
// or to the content in between them when invert is true.
func Transform(query, content string, fn Func, invert bool) string {
	if invert {
		return TransformOther(query, content, fn)
	}
	return TransformQuery(query, content, fn)
}

// JoinMatches applies fn to each occurrence of query and concatenates the
// results with no separator. Content outside the matches is discarded.
func JoinMatches(query, content string, fn Func) string {
	var b strings.Builder
	for _, match := range New(query, content).CollectStrings() {
		b.WriteString(fn(match))
	}
	return b.String()
}
