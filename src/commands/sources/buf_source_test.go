package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, source Source) []JsonMap {
	t.Helper()

	var docs []JsonMap
	for {
		item, err := source.GetOne(context.Background())
		require.NoError(t, err)
		if item.Type == SourceItemTypeClose {
			return docs
		}
		require.Equal(t, SourceItemTypeDocument, item.Type)
		docs = append(docs, item.Document)
	}
}

func TestBufSourceFromReader(t *testing.T) {
	input := strings.Join([]string{
		`{"id": "1", "content": "haystackneedlehaystack"}`,
		``,
		`not json`,
		`{"id": "2", "content": "haystack"}`,
	}, "\n")

	source := NewBufSourceFromReader(strings.NewReader(input))
	docs := drain(t, source)
	require.NoError(t, source.Close())

	require.Len(t, docs, 2)
	require.Equal(t, "1", docs[0]["id"])
	require.Equal(t, "haystack", docs[1]["content"])

	// stays closed
	item, err := source.GetOne(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceItemTypeClose, item.Type)
}

func TestConnectToSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"content": "needle"}`+"\n"), 0644))

	source, err := ConnectToSource(context.Background(), path)
	require.NoError(t, err)
	defer source.Close()

	docs := drain(t, source)
	require.Equal(t, []JsonMap{{"content": "needle"}}, docs)

	_, err = ConnectToSource(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
}

func TestGetOneHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewBufSourceFromReader(strings.NewReader(`{"content": "x"}`))
	_, err := source.GetOne(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
