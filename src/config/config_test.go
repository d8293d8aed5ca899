package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected CorpusConfig
		err      error
	}{
		{
			name: "YAMLWithDefaults",
			input: `
name: books
path: /tmp/books
`,
			expected: CorpusConfig{
				Name:         "books",
				Path:         "/tmp/books",
				Version:      VERSION,
				ContentField: DefaultContentField,
				Highlight:    HighlightConfig{Match: "upper", Other: "identity"},
			},
		},
		{
			name: "YAMLFull",
			input: `
name: logs
path: /var/lib/haystack/logs
content_field: message
id_field: request_id
highlight:
  match: lower
  other: title
`,
			expected: CorpusConfig{
				Name:         "logs",
				Path:         "/var/lib/haystack/logs",
				Version:      VERSION,
				ContentField: "message",
				IDField:      "request_id",
				Highlight:    HighlightConfig{Match: "lower", Other: "title"},
			},
		},
		{
			name:  "JSON",
			input: `{"name": "notes", "path": "./notes", "content_field": "body"}`,
			expected: CorpusConfig{
				Name:         "notes",
				Path:         "./notes",
				Version:      VERSION,
				ContentField: "body",
				Highlight:    HighlightConfig{Match: "upper", Other: "identity"},
			},
		},
		{
			name:  "MissingName",
			input: "path: /tmp/x\n",
			err:   ErrInvalidConfig,
		},
		{
			name:  "MissingPath",
			input: "name: x\n",
			err:   ErrInvalidConfig,
		},
		{
			name:  "UnknownTransform",
			input: "name: x\npath: /tmp/x\nhighlight:\n  match: sparkle\n",
			err:   ErrInvalidConfig,
		},
		{
			name:  "FutureVersion",
			input: "name: x\npath: /tmp/x\nversion: 7\n",
			err:   ErrInvalidConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var config CorpusConfig
			err := config.FromString(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, config)
		})
	}
}

func TestLoadCorpusConfigFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: books\npath: "+dir+"\n"), 0644))

	config, err := LoadCorpusConfigFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "books", config.Name)
	require.Equal(t, dir, config.Path)

	_, err = LoadCorpusConfigFromPath(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestHighlightTransforms(t *testing.T) {
	match, other, err := HighlightConfig{Match: "upper", Other: "title"}.Transforms()
	require.NoError(t, err)
	require.Equal(t, "NEEDLE", match("needle"))
	require.Equal(t, "Haystack", other("haystack"))
}
