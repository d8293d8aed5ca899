package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/queryrange"
	"haystack/src/textcase"
)

// RunTransform rewrites the input with the configured transforms applied to
// the occurrences of the query and to the text in between.
func RunTransform(ctx context.Context, transformArgs *args.TransformArgs, stdin io.Reader, out io.Writer) error {
	matchFn, err := textcase.Lookup(transformArgs.Match)
	if err != nil {
		return fmt.Errorf("--match: %w", err)
	}
	otherFn, err := textcase.Lookup(transformArgs.Other)
	if err != nil {
		return fmt.Errorf("--other: %w", err)
	}

	content, err := readInput(ctx, transformArgs.Input, stdin)
	if err != nil {
		return err
	}

	var result string
	if transformArgs.MatchesOnly {
		result = queryrange.JoinMatches(transformArgs.Query, content, matchFn)
	} else {
		result = queryrange.TransformAll(transformArgs.Query, content, matchFn, otherFn)
	}

	writer, err := openOutput(ctx, transformArgs.Output, out)
	if err != nil {
		return err
	}

	if err := writeOutput(writer, result); err != nil {
		return err
	}

	logrus.Debugf("Wrote %d bytes", len(result))
	return nil
}
