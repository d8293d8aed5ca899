package sources

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// maxLineSize bounds a single JSONL document
const maxLineSize = 16 * 1024 * 1024

// BufSource represents a buffered source for reading JSONL documents
type BufSource struct {
	closer  io.Closer
	scanner *bufio.Scanner
	line    int
}

// NewBufSourceFromPath creates a new BufSource from a file path
func NewBufSourceFromPath(path string) (*BufSource, error) {
	logrus.Debugf("Reading from '%s'", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	return newBufSource(file, file), nil
}

// NewBufSourceFromStdin creates a new BufSource from stdin
func NewBufSourceFromStdin() *BufSource {
	logrus.Debug("Reading from stdin")
	return newBufSource(os.Stdin, nil)
}

// NewBufSourceFromReader creates a new BufSource from any reader. The reader
// is not closed by the source.
func NewBufSourceFromReader(reader io.Reader) *BufSource {
	return newBufSource(reader, nil)
}

func newBufSource(reader io.Reader, closer io.Closer) *BufSource {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &BufSource{
		closer:  closer,
		scanner: scanner,
	}
}

// GetOne implements Source interface. Blank lines are skipped, and so are
// lines that are not a JSON object.
func (bs *BufSource) GetOne(ctx context.Context) (*SourceItem, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !bs.scanner.Scan() {
			if err := bs.scanner.Err(); err != nil {
				return nil, fmt.Errorf("scanner error: %w", err)
			}
			// EOF reached
			return &SourceItem{Type: SourceItemTypeClose}, nil
		}
		bs.line++

		line := bs.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var jsonMap JsonMap
		if err := json.Unmarshal(line, &jsonMap); err != nil {
			logrus.Warnf("Skipping line %d: failed to parse JSON: %v", bs.line, err)
			continue
		}

		return &SourceItem{
			Type:     SourceItemTypeDocument,
			Document: jsonMap,
		}, nil
	}
}

// Close closes the underlying reader if the source owns it
func (bs *BufSource) Close() error {
	if bs.closer != nil {
		return bs.closer.Close()
	}
	return nil
}
