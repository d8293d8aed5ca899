package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"haystack/src/args"
	"haystack/src/config"
	"haystack/src/database"
	"haystack/src/queryrange"
)

// SearchResult represents a search result document
type SearchResult struct {
	ID        string                 `json:"id"`
	Score     int                    `json:"score"`
	Ranges    []queryrange.Range     `json:"ranges"`
	Highlight string                 `json:"highlight"`
	Document  map[string]interface{} `json:"document"`
}

// searcher scores stored documents by the number of occurrences of the query
type searcher struct {
	query        string
	contentField string
	matchFn      queryrange.Func
	otherFn      queryrange.Func
}

func newSearcher(query string, corpusConfig *config.CorpusConfig) (*searcher, error) {
	matchFn, otherFn, err := corpusConfig.Highlight.Transforms()
	if err != nil {
		return nil, err
	}

	return &searcher{
		query:        query,
		contentField: corpusConfig.ContentField,
		matchFn:      matchFn,
		otherFn:      otherFn,
	}, nil
}

// score returns the result for doc, or false when it has no occurrence
func (s *searcher) score(doc StoredDocument) (SearchResult, bool) {
	content, ok := doc.Source[s.contentField].(string)
	if !ok {
		return SearchResult{}, false
	}

	ranges := queryrange.New(s.query, content).CollectRanges()
	if len(ranges) == 0 {
		return SearchResult{}, false
	}

	return SearchResult{
		ID:        doc.ID,
		Score:     len(ranges),
		Ranges:    ranges,
		Highlight: queryrange.TransformAll(s.query, content, s.matchFn, s.otherFn),
		Document:  doc.Source,
	}, true
}

// segmentHit is a document seen in the segment at index segment of the
// oldest-first segment list. result is nil when the document did not match.
type segmentHit struct {
	id      string
	segment int
	result  *SearchResult
}

// sortResults orders results by score descending, then by id
func sortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// runSearchWithCallback executes a search with a callback function for each result
func runSearchWithCallback(
	ctx context.Context,
	searchArgs *args.SearchArgs,
	db database.DBAdapter,
	onDocFn func(string),
) error {
	corpusConfig, err := getCorpusConfig(ctx, searchArgs.Name, db)
	if err != nil {
		return err
	}

	if searchArgs.Limit <= 0 || searchArgs.Query == "" {
		return nil
	}

	s, err := newSearcher(searchArgs.Query, corpusConfig)
	if err != nil {
		return err
	}

	segments, err := listSegments(ctx, searchArgs.Name, db)
	if err != nil {
		return err
	}

	if len(segments) == 0 {
		logrus.Infof("No segments for '%s'", searchArgs.Name)
		return nil
	}

	hitChan := make(chan segmentHit, searchArgs.Limit)
	doneChan := make(chan []SearchResult)

	// Start result collector goroutine
	go func() {
		newest := make(map[string]segmentHit)
		for hit := range hitChan {
			if prev, ok := newest[hit.id]; ok && prev.segment > hit.segment {
				continue
			}
			newest[hit.id] = hit
		}

		var results []SearchResult
		for _, hit := range newest {
			if hit.result != nil {
				results = append(results, *hit.result)
			}
		}
		doneChan <- results
	}()

	// One search task per segment
	var wg sync.WaitGroup
	for i, segment := range segments {
		wg.Add(1)
		go func(i int, segment Segment) {
			defer wg.Done()
			dir := filepath.Join(corpusConfig.Path, segment.DirName)
			logrus.Debugf("Searching segment %s with query: %s", segment.ID, searchArgs.Query)

			err := visitSegment(ctx, dir, func(doc StoredDocument) error {
				// Non-matching documents are reported too, so that they
				// shadow matching copies in older segments.
				hit := segmentHit{id: doc.ID, segment: i}
				if result, ok := s.score(doc); ok {
					hit.result = &result
				}
				select {
				case hitChan <- hit:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			if err != nil {
				logrus.Errorf("Error in search task for segment %s: %v", segment.ID, err)
			}
		}(i, segment)
	}

	// Wait for all search tasks to complete
	go func() {
		wg.Wait()
		close(hitChan)
	}()

	results := <-doneChan
	if err := ctx.Err(); err != nil {
		return err
	}

	sortResults(results)
	if len(results) > searchArgs.Limit {
		results = results[:searchArgs.Limit]
	}

	for _, result := range results {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			logrus.Errorf("Failed to marshal result: %v", err)
			continue
		}
		onDocFn(string(resultJSON))
	}

	return nil
}

// RunSearch executes the search command
func RunSearch(ctx context.Context, searchArgs *args.SearchArgs, db database.DBAdapter, out io.Writer) error {
	return runSearchWithCallback(
		ctx,
		searchArgs,
		db,
		func(doc string) {
			fmt.Fprintln(out, doc)
		},
	)
}
