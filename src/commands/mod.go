package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"haystack/src/config"
	"haystack/src/database"
	"haystack/src/s3"
)

const (
	// SourceFieldName stores the original JSON document in each segment
	SourceFieldName = "_source"

	// idFieldName is the field bluge stores document ids under
	idFieldName = "_id"
)

var (
	// ErrCorpusNotFound is returned when no corpus with the given name exists
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrCorpusExists is returned when creating a corpus whose name is taken
	ErrCorpusExists = errors.New("corpus already exists")
)

// Operator interface for reading and writing input and output files
type Operator interface {
	Reader(ctx context.Context, path string) (io.ReadCloser, error)
	Writer(ctx context.Context, path string) (io.WriteCloser, error)
}

// FileSystemOperator implements Operator for local filesystem
type FileSystemOperator struct {
	rootPath string
}

// NewFileSystemOperator creates a new filesystem operator
func NewFileSystemOperator(rootPath string) *FileSystemOperator {
	return &FileSystemOperator{rootPath: rootPath}
}

func (fs *FileSystemOperator) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(fs.rootPath, path)
	return os.Open(fullPath)
}

func (fs *FileSystemOperator) Writer(ctx context.Context, path string) (io.WriteCloser, error) {
	fullPath := filepath.Join(fs.rootPath, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, err
	}
	return os.Create(fullPath)
}

// getOperator creates an appropriate operator based on the path and returns
// it with the path relative to the operator
func getOperator(ctx context.Context, path string) (Operator, string, error) {
	if s3.IsURL(path) {
		bucket, key, err := s3.ParseURL(path)
		if err != nil {
			return nil, "", err
		}

		op, err := s3.NewMinIOOperator(ctx, bucket, s3.OptionsFromEnv())
		if err != nil {
			return nil, "", fmt.Errorf("failed to create S3 operator: %w", err)
		}
		return op, key, nil
	}

	// Local filesystem path
	return NewFileSystemOperator(""), path, nil
}

// readInput reads the whole input into memory. An empty path or "-" reads stdin.
func readInput(ctx context.Context, path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		logrus.Debug("Reading from stdin")
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	op, key, err := getOperator(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to get operator: %w", err)
	}

	reader, err := op.Reader(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	logrus.Debugf("Read %d bytes from '%s'", len(data), path)
	return string(data), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// openOutput opens the output path, or wraps stdout when path is empty
func openOutput(ctx context.Context, path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}

	op, key, err := getOperator(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	writer, err := op.Writer(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	return writer, nil
}

// aborter is implemented by writers that can discard what was written
// instead of committing it on Close
type aborter interface {
	Abort() error
}

// writeOutput writes data and closes writer. A failed write aborts the writer
// when it supports that, so no partial output is committed.
func writeOutput(writer io.WriteCloser, data string) error {
	if _, err := io.WriteString(writer, data); err != nil {
		if a, ok := writer.(aborter); ok {
			if abortErr := a.Abort(); abortErr != nil {
				logrus.Warnf("Failed to abort output: %v", abortErr)
			}
		} else {
			writer.Close()
		}
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

// isNoRows reports whether err means a query matched no row, for either backend
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func isCorpusNotFound(err error) bool {
	return errors.Is(err, ErrCorpusNotFound)
}

// getCorpusConfig retrieves the corpus configuration from the database
func getCorpusConfig(ctx context.Context, name string, db database.DBAdapter) (*config.CorpusConfig, error) {
	var configJSON string
	row := db.QueryRow(ctx, "SELECT config FROM corpora WHERE name=?", name)
	if err := row.Scan(&configJSON); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: '%s'", ErrCorpusNotFound, name)
		}
		return nil, fmt.Errorf("failed to get corpus config: %w", err)
	}

	var corpusConfig config.CorpusConfig
	if err := json.Unmarshal([]byte(configJSON), &corpusConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal corpus config: %w", err)
	}
	corpusConfig.ApplyDefaults()

	return &corpusConfig, nil
}

// Segment represents metadata about a bluge segment of a corpus
type Segment struct {
	ID       string `json:"id"`
	DirName  string `json:"dir_name"`
	DocCount int64  `json:"doc_count"`
}

// listSegments returns the segments of a corpus, oldest first
func listSegments(ctx context.Context, corpusName string, db database.DBAdapter) ([]Segment, error) {
	rows, err := db.Query(ctx,
		"SELECT id, dir_name, doc_count FROM segments WHERE corpus_name=? ORDER BY created_at, id",
		corpusName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var items []Segment
	for rows.Next() {
		var item Segment
		if err := rows.Scan(&item.ID, &item.DirName, &item.DocCount); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// insertSegment records a committed segment in the catalog
func insertSegment(ctx context.Context, corpusName string, segment Segment, db database.DBAdapter) error {
	err := db.Exec(ctx,
		"INSERT INTO segments (id, corpus_name, dir_name, doc_count, created_at) VALUES (?, ?, ?, ?, ?)",
		segment.ID, corpusName, segment.DirName, segment.DocCount, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert segment metadata: %w", err)
	}
	return nil
}

// deleteSegmentRows removes segment records from the catalog
func deleteSegmentRows(ctx context.Context, segments []Segment, db database.DBAdapter) error {
	for _, segment := range segments {
		if err := db.Exec(ctx, "DELETE FROM segments WHERE id=?", segment.ID); err != nil {
			return fmt.Errorf("failed to delete segment record %s: %w", segment.ID, err)
		}
	}
	return nil
}

// removeSegmentDirs deletes segment directories concurrently. Failures are
// only logged: an unreferenced directory is never read again.
func removeSegmentDirs(corpusPath string, segments []Segment) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, segment := range segments {
		wg.Add(1)
		go func(segment Segment) {
			defer wg.Done()
			dir := filepath.Join(corpusPath, segment.DirName)
			if err := os.RemoveAll(dir); err != nil {
				logrus.Warnf(
					"Failed to delete segment dir '%s': %v. "+
						"Don't worry, this just means the dir is leaked, but will never be read from again.",
					dir, err,
				)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(segment)
	}

	wg.Wait()
	return failed
}

// StoredDocument is a document read back from a segment
type StoredDocument struct {
	ID     string
	Source map[string]interface{}
}

// visitSegment calls fn with every document stored in the segment dir
func visitSegment(ctx context.Context, dir string, fn func(StoredDocument) error) error {
	reader, err := bluge.OpenReader(bluge.DefaultConfig(dir))
	if err != nil {
		return fmt.Errorf("failed to open segment %s: %w", dir, err)
	}
	defer reader.Close()

	request := bluge.NewAllMatches(bluge.NewMatchAllQuery())
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to search segment %s: %w", dir, err)
	}

	for {
		match, err := iterator.Next()
		if err != nil {
			return fmt.Errorf("failed to iterate segment %s: %w", dir, err)
		}
		if match == nil {
			return nil
		}

		var doc StoredDocument
		var source []byte
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case idFieldName:
				doc.ID = string(value)
			case SourceFieldName:
				source = append([]byte(nil), value...)
			}
			return true
		})
		if err != nil {
			logrus.Warnf("Failed to visit stored fields: %v", err)
			continue
		}

		if err := json.Unmarshal(source, &doc.Source); err != nil {
			logrus.Warnf("Failed to parse stored document '%s': %v", doc.ID, err)
			continue
		}

		if err := fn(doc); err != nil {
			return err
		}
	}
}

// newBlugeDocument builds the segment representation of a JSON document
func newBlugeDocument(id string, source map[string]interface{}, contentField string) (*bluge.Document, error) {
	sourceJSON, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	doc := bluge.NewDocument(id)
	doc.AddField(bluge.NewStoredOnlyField(SourceFieldName, sourceJSON))
	if content, ok := source[contentField].(string); ok {
		doc.AddField(bluge.NewTextField(contentField, content))
	}
	return doc, nil
}

// writeSegment writes documents into a new bluge segment under dir, calling
// next until it reports no more documents.
func writeSegment(dir string, batchSize int, contentField string, next func() (StoredDocument, bool, error)) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create segment directory: %w", err)
	}

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(dir))
	if err != nil {
		return 0, fmt.Errorf("failed to create bluge writer: %w", err)
	}

	var added int64
	pending := 0
	batch := bluge.NewBatch()

	flush := func() error {
		if pending == 0 {
			return nil
		}
		if err := writer.Batch(batch); err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}
		batch.Reset()
		pending = 0
		return nil
	}

	for {
		stored, ok, err := next()
		if err != nil {
			writer.Close()
			return added, err
		}
		if !ok {
			break
		}

		doc, err := newBlugeDocument(stored.ID, stored.Source, contentField)
		if err != nil {
			logrus.Errorf("Failed to index document '%s': %v", stored.ID, err)
			continue
		}

		batch.Update(doc.ID(), doc)
		pending++
		added++

		if pending >= batchSize {
			if err := flush(); err != nil {
				writer.Close()
				return added, err
			}
		}
	}

	if err := flush(); err != nil {
		writer.Close()
		return added, err
	}

	if err := writer.Close(); err != nil {
		return added, fmt.Errorf("failed to close bluge writer: %w", err)
	}

	return added, nil
}
