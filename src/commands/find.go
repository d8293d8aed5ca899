package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/queryrange"
)

// FoundRange is a single line of find output
type FoundRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// RunFind prints every range of the query in the input as JSON lines, or
// their count.
func RunFind(ctx context.Context, findArgs *args.FindArgs, stdin io.Reader, out io.Writer) error {
	content, err := readInput(ctx, findArgs.Input, stdin)
	if err != nil {
		return err
	}

	var it *queryrange.Iterator
	if findArgs.Inverted {
		it = queryrange.NewInverted(findArgs.Query, content)
	} else {
		it = queryrange.New(findArgs.Query, content)
	}

	if findArgs.Count {
		count := 0
		for range it.All() {
			count++
		}
		logrus.Debugf("Found %d ranges", count)
		_, err := fmt.Fprintln(out, count)
		return err
	}

	encoder := json.NewEncoder(out)
	for r := range it.All() {
		err := encoder.Encode(FoundRange{
			Start: r.Start,
			End:   r.End,
			Text:  r.Slice(content),
		})
		if err != nil {
			return fmt.Errorf("failed to write range: %w", err)
		}
	}

	return nil
}

// RunStrings prints every occurrence of the query in the input, one per line
func RunStrings(ctx context.Context, stringsArgs *args.StringsArgs, stdin io.Reader, out io.Writer) error {
	content, err := readInput(ctx, stringsArgs.Input, stdin)
	if err != nil {
		return err
	}

	for _, s := range queryrange.New(stringsArgs.Query, content).CollectStrings() {
		if _, err := fmt.Fprintln(out, s); err != nil {
			return fmt.Errorf("failed to write string: %w", err)
		}
	}

	return nil
}
