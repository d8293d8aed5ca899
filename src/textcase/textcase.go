// Package textcase provides simple rune-wise case transforms used to render
// matched and unmatched spans of content.
//
// Casing is per rune with unicode.ToUpper and unicode.ToLower; no case folding
// or locale-specific rules are applied.
package textcase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"haystack/src/queryrange"
)

// ErrUnknownTransform is returned by Lookup for names that are not registered
var ErrUnknownTransform = errors.New("unknown transform")

const (
	TransformIdentity = "identity"
	TransformUpper    = "upper"
	TransformLower    = "lower"
	TransformTitle    = "title"
)

var transforms = map[string]queryrange.Func{
	TransformIdentity: queryrange.Identity,
	TransformUpper:    Upper,
	TransformLower:    Lower,
	TransformTitle:    ToTitleCase,
}

// Upper converts every rune of s to upper case
func Upper(s string) string {
	return strings.Map(unicode.ToUpper, s)
}

// Lower converts every rune of s to lower case
func Lower(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// ToTitleCase capitalizes the first rune of each whitespace-delimited word and
// lower-cases the rest. Whitespace is kept as is.
//
//	ToTitleCase("fooBarBaz")   // "Foobarbaz"
//	ToTitleCase("hello WORLD") // "Hello World"
func ToTitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	wordStart := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			wordStart = true
			b.WriteRune(r)
		case wordStart:
			wordStart = false
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// Lookup returns the transform registered under name
func Lookup(name string) (queryrange.Func, error) {
	fn, ok := transforms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTransform, name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names returns the registered transform names in sorted order
func Names() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
