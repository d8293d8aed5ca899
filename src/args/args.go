package args

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"haystack/src/textcase"
)

// Args represents the main command line arguments
type Args struct {
	DB     string     `json:"db"`
	SubCmd SubCommand `json:"subcmd"`
}

// NeedsDB reports whether the selected subcommand works on the corpus catalog
func (a *Args) NeedsDB() bool {
	switch a.SubCmd.Name {
	case "create", "drop", "index", "merge", "search":
		return true
	default:
		return false
	}
}

// SubCommand represents the subcommands available
type SubCommand struct {
	Name          string         `json:"name"`
	FindArgs      *FindArgs      `json:"find_args,omitempty"`
	StringsArgs   *StringsArgs   `json:"strings_args,omitempty"`
	TransformArgs *TransformArgs `json:"transform_args,omitempty"`
	CreateArgs    *CreateArgs    `json:"create_args,omitempty"`
	DropArgs      *DropArgs      `json:"drop_args,omitempty"`
	IndexArgs     *IndexArgs     `json:"index_args,omitempty"`
	MergeArgs     *MergeArgs     `json:"merge_args,omitempty"`
	SearchArgs    *SearchArgs    `json:"search_args,omitempty"`
}

// FindArgs represents arguments for the find subcommand
type FindArgs struct {
	Query    string `json:"query"`
	Input    string `json:"input"`
	Inverted bool   `json:"inverted"`
	Count    bool   `json:"count"`
}

// StringsArgs represents arguments for the strings subcommand
type StringsArgs struct {
	Query string `json:"query"`
	Input string `json:"input"`
}

// TransformArgs represents arguments for the transform subcommand
type TransformArgs struct {
	Query       string `json:"query"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	Match       string `json:"match"`
	Other       string `json:"other"`
	MatchesOnly bool   `json:"matches_only"`
}

// CreateArgs represents arguments for the create subcommand
type CreateArgs struct {
	ConfigPath string `json:"config_path"`
}

// DropArgs represents arguments for the drop subcommand
type DropArgs struct {
	Name string `json:"name"`
}

// IndexArgs represents arguments for the index subcommand
type IndexArgs struct {
	Name      string `json:"name"`
	Input     string `json:"input"`
	BatchSize int    `json:"batch_size"`
}

// MergeArgs represents arguments for the merge subcommand
type MergeArgs struct {
	Name string `json:"name"`
}

// SearchArgs represents arguments for the search subcommand
type SearchArgs struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// Global variables to store parsed arguments
var (
	globalArgs Args
	rootCmd    *cobra.Command
)

// createRootCmd creates the root command
func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "haystack",
		Short: "Find every needle in a haystack",
		Long: `Find every non-overlapping occurrence of a query in text, transform the
matches, and search document corpora stored on disk.`,
		SilenceUsage: true,
	}

	// Add global flags
	cmd.PersistentFlags().StringVar(&globalArgs.DB, "db", "",
		"Catalog DB connection url (sqlite:<path> or postgres://...). Can also be provided by a DATABASE_URL env var, but only if this arg is not provided.")

	return cmd
}

// optionalInput returns the input argument at index i, or "" for stdin
func optionalInput(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

// createFindCmd creates the find subcommand
func createFindCmd() *cobra.Command {
	findArgs := &FindArgs{}

	cmd := &cobra.Command{
		Use:   "find [query] [input]",
		Short: "Print the byte ranges of every occurrence of query",
		Long: `Print the byte ranges of every occurrence of query as JSON lines.
Read from stdin by not providing an input. Input may be a file path or an s3://bucket/key URL.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			findArgs.Query = args[0]
			findArgs.Input = optionalInput(args, 1)
			globalArgs.SubCmd = SubCommand{
				Name:     "find",
				FindArgs: findArgs,
			}
		},
	}

	cmd.Flags().BoolVarP(&findArgs.Inverted, "inverted", "v", false,
		"Print the spans in between occurrences instead of the occurrences.")
	cmd.Flags().BoolVarP(&findArgs.Count, "count", "c", false,
		"Only print the number of ranges.")

	return cmd
}

// createStringsCmd creates the strings subcommand
func createStringsCmd() *cobra.Command {
	stringsArgs := &StringsArgs{}

	cmd := &cobra.Command{
		Use:   "strings [query] [input]",
		Short: "Print every matched string, one per line",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			stringsArgs.Query = args[0]
			stringsArgs.Input = optionalInput(args, 1)
			globalArgs.SubCmd = SubCommand{
				Name:        "strings",
				StringsArgs: stringsArgs,
			}
		},
	}

	return cmd
}

// createTransformCmd creates the transform subcommand
func createTransformCmd() *cobra.Command {
	transformArgs := &TransformArgs{}

	cmd := &cobra.Command{
		Use:   "transform [query] [input]",
		Short: "Rewrite the input with the matches and the text in between transformed",
		Long: fmt.Sprintf(`Rewrite the input, applying one transform to every occurrence of query
and another to the text in between.
Available transforms: %v`, textcase.Names()),
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			transformArgs.Query = args[0]
			transformArgs.Input = optionalInput(args, 1)
			globalArgs.SubCmd = SubCommand{
				Name:          "transform",
				TransformArgs: transformArgs,
			}
		},
	}

	cmd.Flags().StringVarP(&transformArgs.Match, "match", "m", textcase.TransformUpper,
		"Transform applied to every occurrence of the query.")
	cmd.Flags().StringVarP(&transformArgs.Other, "other", "t", textcase.TransformIdentity,
		"Transform applied to the text in between occurrences.")
	cmd.Flags().StringVarP(&transformArgs.Output, "output", "o", "",
		"Write the result to a file or s3://bucket/key URL instead of stdout.")
	cmd.Flags().BoolVar(&transformArgs.MatchesOnly, "matches-only", false,
		"Only output the transformed occurrences, concatenated.")

	return cmd
}

// createCreateCmd creates the create subcommand
func createCreateCmd() *cobra.Command {
	createArgs := &CreateArgs{}

	cmd := &cobra.Command{
		Use:   "create [config_path]",
		Short: "Create a new corpus",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			createArgs.ConfigPath = args[0]
			globalArgs.SubCmd = SubCommand{
				Name:       "create",
				CreateArgs: createArgs,
			}
		},
	}

	return cmd
}

// createDropCmd creates the drop subcommand
func createDropCmd() *cobra.Command {
	dropArgs := &DropArgs{}

	cmd := &cobra.Command{
		Use:   "drop [name]",
		Short: "Drop a corpus",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dropArgs.Name = args[0]
			globalArgs.SubCmd = SubCommand{
				Name:     "drop",
				DropArgs: dropArgs,
			}
		},
	}

	return cmd
}

// createIndexCmd creates the index subcommand
func createIndexCmd() *cobra.Command {
	indexArgs := &IndexArgs{
		BatchSize: 1000,
	}

	cmd := &cobra.Command{
		Use:   "index [name] [input]",
		Short: "Index documents",
		Long: `Index documents from a JSONL file into a new segment.
Read from stdin by not providing any file path.`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			indexArgs.Name = args[0]
			indexArgs.Input = optionalInput(args, 1)
			globalArgs.SubCmd = SubCommand{
				Name:      "index",
				IndexArgs: indexArgs,
			}
		},
	}

	cmd.Flags().IntVar(&indexArgs.BatchSize, "batch-size", 1000,
		"Number of documents written to the segment per batch.")

	return cmd
}

// createMergeCmd creates the merge subcommand
func createMergeCmd() *cobra.Command {
	mergeArgs := &MergeArgs{}

	cmd := &cobra.Command{
		Use:   "merge [name]",
		Short: "Merge corpus segments",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mergeArgs.Name = args[0]
			globalArgs.SubCmd = SubCommand{
				Name:      "merge",
				MergeArgs: mergeArgs,
			}
		},
	}

	return cmd
}

// createSearchCmd creates the search subcommand
func createSearchCmd() *cobra.Command {
	searchArgs := &SearchArgs{
		Limit: 10,
	}

	cmd := &cobra.Command{
		Use:   "search [name] [query]",
		Short: "Search a corpus",
		Long:  "Search a corpus for documents containing the exact query, most occurrences first.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			searchArgs.Name = args[0]
			searchArgs.Query = args[1]
			globalArgs.SubCmd = SubCommand{
				Name:       "search",
				SearchArgs: searchArgs,
			}
		},
	}

	cmd.Flags().IntVarP(&searchArgs.Limit, "limit", "l", 10,
		"Limit to a number of top results.")

	return cmd
}

// newRootCmd builds the full command tree
func newRootCmd() *cobra.Command {
	cmd := createRootCmd()

	cmd.AddCommand(createFindCmd())
	cmd.AddCommand(createStringsCmd())
	cmd.AddCommand(createTransformCmd())
	cmd.AddCommand(createCreateCmd())
	cmd.AddCommand(createDropCmd())
	cmd.AddCommand(createIndexCmd())
	cmd.AddCommand(createMergeCmd())
	cmd.AddCommand(createSearchCmd())

	return cmd
}

// ParseArgsFrom parses the given command line arguments, writing help and
// usage to out.
func ParseArgsFrom(argv []string, out io.Writer) (*Args, error) {
	// Initialize global args
	globalArgs = Args{}

	rootCmd = newRootCmd()
	rootCmd.SetArgs(argv)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	// Execute command parsing
	if err := rootCmd.Execute(); err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return &globalArgs, nil
}

// ParseArgs parses command line arguments and returns Args struct
func ParseArgs(out io.Writer) (*Args, error) {
	return ParseArgsFrom(nil, out)
}
