package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/config"
	"haystack/src/database"
)

// RunCreate executes the create command
func RunCreate(ctx context.Context, createArgs *args.CreateArgs, db database.DBAdapter) error {
	corpusConfig, err := config.LoadCorpusConfigFromPath(createArgs.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config from path %s: %w", createArgs.ConfigPath, err)
	}

	return RunCreateFromConfig(ctx, corpusConfig, db)
}

// RunCreateFromConfig creates a corpus from a config object
func RunCreateFromConfig(ctx context.Context, corpusConfig *config.CorpusConfig, db database.DBAdapter) error {
	corpusConfig.ApplyDefaults()
	if err := corpusConfig.Validate(); err != nil {
		return err
	}

	_, err := getCorpusConfig(ctx, corpusConfig.Name, db)
	if err == nil {
		return fmt.Errorf("%w: '%s'", ErrCorpusExists, corpusConfig.Name)
	}
	if !isCorpusNotFound(err) {
		return err
	}

	if err := os.MkdirAll(corpusConfig.Path, 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	// Convert config to JSON for storage
	configJSON, err := json.Marshal(corpusConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	err = db.Exec(ctx,
		"INSERT INTO corpora (name, config) VALUES (?, ?)",
		corpusConfig.Name,
		string(configJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert corpus into database: %w", err)
	}

	logrus.Infof("Created corpus: %s", corpusConfig.Name)

	return nil
}
