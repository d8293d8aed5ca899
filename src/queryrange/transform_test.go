package queryrange

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const needles = "haystackneedlehaystackneedlehaystack"

func TestTransformQuery(t *testing.T) {
	result := TransformQuery("needle", needles, strings.ToUpper)
	require.Equal(t, "haystackNEEDLEhaystackNEEDLEhaystack", result)
}

func TestTransformOther(t *testing.T) {
	result := TransformOther("needle", needles, strings.ToUpper)
	require.Equal(t, "HAYSTACKneedleHAYSTACKneedleHAYSTACK", result)
}

func TestTransform(t *testing.T) {
	require.Equal(t, TransformQuery("needle", needles, strings.ToUpper),
		Transform("needle", needles, strings.ToUpper, false))
	require.Equal(t, TransformOther("needle", needles, strings.ToUpper),
		Transform("needle", needles, strings.ToUpper, true))
}

func TestTransformAll(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		content  string
		matchFn  Func
		otherFn  Func
		expected string
	}{
		{
			name:     "UpperAndIdentity",
			query:    "needle",
			content:  "haystackneedlehaystack",
			matchFn:  strings.ToUpper,
			otherFn:  Identity,
			expected: "haystackNEEDLEhaystack",
		},
		{
			name:     "TransformedQueryInContent",
			query:    "a",
			content:  "aAa",
			matchFn:  strings.ToUpper,
			otherFn:  func(s string) string { return "<" + s + ">" },
			expected: "A<A>A",
		},
		{
			name:     "NoMatch",
			query:    "needle",
			content:  "HayStack",
			matchFn:  strings.ToUpper,
			otherFn:  strings.ToLower,
			expected: "haystack",
		},
		{
			name:     "EmptyQuery",
			query:    "",
			content:  "haystack",
			matchFn:  strings.ToUpper,
			otherFn:  func(s string) string { return "[" + s + "]" },
			expected: "[haystack]",
		},
		{
			name:     "EmptySpansAreSkipped",
			query:    "ab",
			content:  "ababxab",
			matchFn:  Identity,
			otherFn:  func(s string) string { return "(" + s + ")" },
			expected: "abab(x)ab",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TransformAll(tc.query, tc.content, tc.matchFn, tc.otherFn)
			require.Equal(t, tc.expected, result)
		})
	}
}

func TestTransformAllIdentityRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 300; i++ {
		query := randomString(rng, "xy", rng.IntN(3))
		content := randomString(rng, "xyz", rng.IntN(30))
		require.Equal(t, content, TransformAll(query, content, Identity, Identity))
	}

	require.Equal(t, "grüße, grüße", TransformAll("ü", "grüße, grüße", Identity, Identity))
}

func TestJoinMatches(t *testing.T) {
	require.Equal(t, "NEEDLENEEDLE", JoinMatches("needle", needles, strings.ToUpper))
	require.Equal(t, "", JoinMatches("needle", "haystack", strings.ToUpper))
	require.Equal(t, "", JoinMatches("", needles, strings.ToUpper))
}
