package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/database"
)

// mergeBatchSize is the number of documents written per batch when merging
const mergeBatchSize = 1000

// RunMerge executes the merge command
func RunMerge(ctx context.Context, mergeArgs *args.MergeArgs, db database.DBAdapter) error {
	corpusConfig, err := getCorpusConfig(ctx, mergeArgs.Name, db)
	if err != nil {
		return err
	}

	segments, err := listSegments(ctx, mergeArgs.Name, db)
	if err != nil {
		return err
	}

	if len(segments) <= 1 {
		logrus.Info("Need at least 2 segments in corpus to be able to merge")
		return nil
	}

	logrus.Infof("Merging %d segments", len(segments))

	// Read the old segments newest first, one at a time. Only the newest copy
	// of a document id survives the merge.
	docs := make(chan StoredDocument)
	readErr := make(chan error, 1)
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(docs)
		seen := make(map[string]struct{})
		for i := len(segments) - 1; i >= 0; i-- {
			dir := filepath.Join(corpusConfig.Path, segments[i].DirName)
			err := visitSegment(readCtx, dir, func(doc StoredDocument) error {
				if _, ok := seen[doc.ID]; ok {
					logrus.Debugf("Dropping shadowed copy of document '%s'", doc.ID)
					return nil
				}
				seen[doc.ID] = struct{}{}
				select {
				case docs <- doc:
					return nil
				case <-readCtx.Done():
					return readCtx.Err()
				}
			})
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	next := func() (StoredDocument, bool, error) {
		doc, ok := <-docs
		if !ok {
			select {
			case err := <-readErr:
				return StoredDocument{}, false, err
			default:
				return StoredDocument{}, false, nil
			}
		}
		return doc, true, nil
	}

	id := uuid.New().String()
	segmentDir := filepath.Join(corpusConfig.Path, id)

	added, err := writeSegment(segmentDir, mergeBatchSize, corpusConfig.ContentField, next)
	if err != nil {
		cancel()
		removeSegmentDirs(corpusConfig.Path, []Segment{{DirName: id}})
		return fmt.Errorf("failed to write merged segment: %w", err)
	}

	merged := Segment{ID: id, DirName: id, DocCount: added}
	if err := insertSegment(ctx, corpusConfig.Name, merged, db); err != nil {
		return err
	}

	// The merged segment is visible, the old ones can go
	if err := deleteSegmentRows(ctx, segments, db); err != nil {
		return fmt.Errorf("failed to delete old segments from database: %w", err)
	}

	if failed := removeSegmentDirs(corpusConfig.Path, segments); failed > 0 {
		logrus.Warnf("Failed to delete %d old segment dirs", failed)
	}

	logrus.Infof("Successfully merged %d segments into 1 (%d documents)", len(segments), added)

	return nil
}
