package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/commands"
	"haystack/src/database"
)

const (
	// Default log levels
	defaultDebugLogLevel   = "debug"
	defaultReleaseLogLevel = "info"
)

// openDB creates a new database connection
func openDB(ctx context.Context, url string) (database.DBAdapter, error) {
	return database.CreateDatabaseAdapter(ctx, url)
}

// dispatchLocal runs the subcommands that only work on their input
func dispatchLocal(ctx context.Context, arguments *args.Args, stdin io.Reader, stdout io.Writer) error {
	switch arguments.SubCmd.Name {
	case "find":
		return commands.RunFind(ctx, arguments.SubCmd.FindArgs, stdin, stdout)
	case "strings":
		return commands.RunStrings(ctx, arguments.SubCmd.StringsArgs, stdin, stdout)
	case "transform":
		return commands.RunTransform(ctx, arguments.SubCmd.TransformArgs, stdin, stdout)
	default:
		return fmt.Errorf("unknown subcommand: %s", arguments.SubCmd.Name)
	}
}

// asyncMain is the main async function that handles the application logic
func asyncMain(ctx context.Context, arguments *args.Args, stdin io.Reader, stdout io.Writer) error {
	if arguments.SubCmd.Name == "" {
		// No subcommand provided, help was shown
		return nil
	}

	if !arguments.NeedsDB() {
		return dispatchLocal(ctx, arguments, stdin, stdout)
	}

	// Get database URL from args or environment
	dbURL := arguments.DB
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return fmt.Errorf("database url must be provided using either --db or DATABASE_URL env var")
		}
	}

	// Open database connection
	db, err := openDB(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Handle subcommands
	switch arguments.SubCmd.Name {
	case "create":
		createArgs := arguments.SubCmd.CreateArgs
		return commands.RunCreate(ctx, createArgs, db)
	case "drop":
		dropArgs := arguments.SubCmd.DropArgs
		return commands.RunDrop(ctx, dropArgs, db)
	case "index":
		indexArgs := arguments.SubCmd.IndexArgs
		return commands.RunIndex(ctx, indexArgs, db)
	case "merge":
		mergeArgs := arguments.SubCmd.MergeArgs
		return commands.RunMerge(ctx, mergeArgs, db)
	case "search":
		searchArgs := arguments.SubCmd.SearchArgs
		return commands.RunSearch(ctx, searchArgs, db, stdout)
	default:
		return fmt.Errorf("unknown subcommand: %s", arguments.SubCmd.Name)
	}
}

// setupLogging configures the logging system
func setupLogging() {
	// Determine default log level based on build mode
	var defaultLogLevel string
	if os.Getenv("DEBUG") == "true" {
		defaultLogLevel = defaultDebugLogLevel
	} else {
		defaultLogLevel = defaultReleaseLogLevel
	}

	// Get log level from environment or use default
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = defaultLogLevel
	}

	// Set log level
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using info level", logLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Set log format with timestamp
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// loadEnv loads environment variables from the given .env files (".env" by
// default) if they exist, then configures logging, so that LOG_LEVEL and
// DEBUG can be set there too
func loadEnv(filenames ...string) {
	_ = godotenv.Load(filenames...)
	setupLogging()
}

func main() {
	loadEnv()

	// Parse command line arguments
	arguments, err := args.ParseArgs(os.Stdout)
	if err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	// Create context for the application
	ctx := context.Background()

	// Run the main application logic
	if err := asyncMain(ctx, arguments, os.Stdin, os.Stdout); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}
