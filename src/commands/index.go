package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/commands/sources"
	"haystack/src/config"
	"haystack/src/database"
)

// IndexRunner reads documents from a source into a new segment of a corpus
type IndexRunner struct {
	source sources.Source
	args   *args.IndexArgs
	config *config.CorpusConfig
	db     database.DBAdapter
}

// NewIndexRunner creates a new IndexRunner
func NewIndexRunner(ctx context.Context, indexArgs *args.IndexArgs, db database.DBAdapter) (*IndexRunner, error) {
	source, err := sources.ConnectToSource(ctx, indexArgs.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source: %w", err)
	}

	runner, err := NewIndexRunnerWithSource(ctx, indexArgs, db, source)
	if err != nil {
		source.Close()
		return nil, err
	}
	return runner, nil
}

// NewIndexRunnerWithSource creates a new IndexRunner with a specific source
func NewIndexRunnerWithSource(
	ctx context.Context,
	indexArgs *args.IndexArgs,
	db database.DBAdapter,
	source sources.Source,
) (*IndexRunner, error) {
	corpusConfig, err := getCorpusConfig(ctx, indexArgs.Name, db)
	if err != nil {
		return nil, err
	}

	return &IndexRunner{
		source: source,
		args:   indexArgs,
		config: corpusConfig,
		db:     db,
	}, nil
}

// documentID picks the id of the n-th document of a segment
func (ir *IndexRunner) documentID(segmentID string, n int64, doc sources.JsonMap) string {
	if ir.config.IDField != "" {
		if value, ok := doc[ir.config.IDField]; ok && value != nil {
			return fmt.Sprintf("%v", value)
		}
	}
	return fmt.Sprintf("%s_%d", segmentID, n)
}

// Run drains the source into a single segment and commits it
func (ir *IndexRunner) Run(ctx context.Context) (int64, error) {
	id := uuid.New().String()
	segmentDir := filepath.Join(ir.config.Path, id)

	logrus.Debugf("Writing segment of id '%s'", id)

	var read int64
	next := func() (StoredDocument, bool, error) {
		item, err := ir.source.GetOne(ctx)
		if err != nil {
			return StoredDocument{}, false, fmt.Errorf("failed to read from source: %w", err)
		}
		if item.Type == sources.SourceItemTypeClose {
			logrus.Debugf("Source closed for segment of id '%s'", id)
			return StoredDocument{}, false, nil
		}

		docID := ir.documentID(id, read, item.Document)
		read++
		return StoredDocument{ID: docID, Source: item.Document}, true, nil
	}

	added, err := writeSegment(segmentDir, ir.args.BatchSize, ir.config.ContentField, next)
	if err != nil {
		if rmErr := os.RemoveAll(segmentDir); rmErr != nil {
			logrus.Warnf("Failed to remove aborted segment of id '%s': %v", id, rmErr)
		}
		return 0, err
	}

	if added == 0 {
		logrus.Debug("Not writing segment: no documents added")
		if err := os.RemoveAll(segmentDir); err != nil {
			logrus.Warnf("Failed to remove empty segment of id '%s': %v", id, err)
		}
		return 0, nil
	}

	logrus.Infof("Committing %d documents", added)

	segment := Segment{ID: id, DirName: id, DocCount: added}
	if err := insertSegment(ctx, ir.config.Name, segment, ir.db); err != nil {
		return 0, err
	}

	return added, nil
}

// Close releases the source
func (ir *IndexRunner) Close() error {
	return ir.source.Close()
}

// RunIndex executes the index command
func RunIndex(ctx context.Context, indexArgs *args.IndexArgs, db database.DBAdapter) error {
	runner, err := NewIndexRunner(ctx, indexArgs, db)
	if err != nil {
		return fmt.Errorf("failed to create index runner: %w", err)
	}
	defer runner.Close()

	if _, err := runner.Run(ctx); err != nil {
		return fmt.Errorf("failed to index: %w", err)
	}

	return nil
}
