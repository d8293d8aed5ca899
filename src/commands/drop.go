package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/database"
)

// RunDrop executes the drop command
func RunDrop(ctx context.Context, dropArgs *args.DropArgs, db database.DBAdapter) error {
	corpusConfig, err := getCorpusConfig(ctx, dropArgs.Name, db)
	if err != nil {
		return err
	}

	segments, err := listSegments(ctx, dropArgs.Name, db)
	if err != nil {
		return err
	}

	// Delete the corpus from the database first
	if err := deleteSegmentRows(ctx, segments, db); err != nil {
		return err
	}
	err = db.Exec(ctx,
		"DELETE FROM corpora WHERE name=?",
		dropArgs.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete corpus from database: %w", err)
	}

	removeSegmentDirs(corpusConfig.Path, segments)

	logrus.Infof(
		"Dropped corpus: %s (%d number of segments)",
		dropArgs.Name, len(segments),
	)

	return nil
}
