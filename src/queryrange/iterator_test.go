package queryrange

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIteratorNext(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		content  string
		expected []Range
	}{
		{
			name:     "TwoNeedles",
			query:    "needle",
			content:  "haystackneedlehaystackneedlehaystack",
			expected: []Range{{8, 14}, {22, 28}},
		},
		{
			name:     "NoOccurrence",
			query:    "needle",
			content:  "haystack",
			expected: nil,
		},
		{
			name:     "OverlappingCandidates",
			query:    "aa",
			content:  "aaaa",
			expected: []Range{{0, 2}, {2, 4}},
		},
		{
			name:     "OddOverlap",
			query:    "aa",
			content:  "aaa",
			expected: []Range{{0, 2}},
		},
		{
			name:     "EmptyQuery",
			query:    "",
			content:  "haystack",
			expected: nil,
		},
		{
			name:     "EmptyQueryEmptyContent",
			query:    "",
			content:  "",
			expected: nil,
		},
		{
			name:     "QueryLongerThanContent",
			query:    "haystacks",
			content:  "haystack",
			expected: nil,
		},
		{
			name:     "WholeContent",
			query:    "haystack",
			content:  "haystack",
			expected: []Range{{0, 8}},
		},
		{
			name:     "AtBothEnds",
			query:    "ab",
			content:  "abxxab",
			expected: []Range{{0, 2}, {4, 6}},
		},
		{
			name:     "MultiByte",
			query:    "ö",
			content:  "föö bär",
			expected: []Range{{1, 3}, {3, 5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			it := New(tc.query, tc.content)
			var got []Range
			for {
				r, ok := it.Next()
				if !ok {
					break
				}
				got = append(got, r)
			}
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestIteratorExhaustionIsIdempotent(t *testing.T) {
	it := New("needle", "haystackneedlehaystack")

	r, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, NewRange(8, 14), r)

	for i := 0; i < 3; i++ {
		r, ok = it.Next()
		require.False(t, ok)
		require.Equal(t, Range{}, r)
	}

	require.Empty(t, it.CollectRanges())
}

func TestIteratorAllIsNotRestartable(t *testing.T) {
	content := "haystackneedlehaystackneedlehaystack"
	it := New("needle", content)

	seq := it.All()
	for r := range seq {
		require.Equal(t, "needle", r.Slice(content))
		break
	}

	var rest []Range
	for r := range seq {
		rest = append(rest, r)
	}
	require.Equal(t, []Range{{22, 28}}, rest)
	require.Empty(t, it.CollectStrings())
}

func TestCollectStrings(t *testing.T) {
	content := "haystackneedlehaystackneedlehaystack"
	needles := New("needle", content).CollectStrings()
	require.Equal(t, []string{"needle", "needle"}, needles)

	require.Empty(t, New("needle", "haystack").CollectStrings())
}

func TestNewInverted(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		content  string
		expected []string
	}{
		{
			name:     "BetweenNeedles",
			query:    "needle",
			content:  "haystackneedlehaystackneedlehaystack",
			expected: []string{"haystack", "haystack", "haystack"},
		},
		{
			name:     "MatchesAtEnds",
			query:    "needle",
			content:  "needlehayneedle",
			expected: []string{"hay"},
		},
		{
			name:     "AdjacentMatches",
			query:    "aa",
			content:  "aaaab",
			expected: []string{"b"},
		},
		{
			name:     "OnlyMatches",
			query:    "aa",
			content:  "aaaa",
			expected: nil,
		},
		{
			name:     "NoMatch",
			query:    "needle",
			content:  "haystack",
			expected: []string{"haystack"},
		},
		{
			name:     "EmptyQuery",
			query:    "",
			content:  "haystack",
			expected: []string{"haystack"},
		},
		{
			name:     "EmptyContent",
			query:    "needle",
			content:  "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			it := NewInverted(tc.query, tc.content)
			require.Equal(t, tc.expected, it.CollectStrings())

			_, ok := it.Next()
			require.False(t, ok)
		})
	}
}

// greedyMatches is the find-and-skip reference the iterator must agree with
func greedyMatches(query, content string) []Range {
	var ranges []Range
	for pos := 0; pos+len(query) <= len(content); {
		if content[pos:pos+len(query)] == query {
			ranges = append(ranges, NewRange(pos, pos+len(query)))
			pos += len(query)
			continue
		}
		pos++
	}
	return ranges
}

func randomString(rng *rand.Rand, alphabet string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[rng.IntN(len(alphabet))])
	}
	return b.String()
}

func TestIteratorProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		query := randomString(rng, "ab", 1+rng.IntN(3))
		content := randomString(rng, "abc", rng.IntN(40))

		ranges := New(query, content).CollectRanges()
		require.Equal(t, greedyMatches(query, content), ranges, "query=%q content=%q", query, content)

		for j, r := range ranges {
			require.True(t, IsWithin(content, r))
			require.Equal(t, query, r.Slice(content))
			if j > 0 {
				require.GreaterOrEqual(t, r.Start, ranges[j-1].End)
			}
		}

		// matches and inverted spans tile the content exactly
		spans := append(ranges, NewInverted(query, content).CollectRanges()...)
		total := 0
		for _, s := range spans {
			total += s.Len()
		}
		require.Equal(t, len(content), total)

		joined := strings.Join(New(query, content).CollectStrings(), "")
		require.Len(t, joined, len(ranges)*len(query))
	}
}
