package sources

import (
	"context"
)

// JsonMap represents a JSON map type
type JsonMap = map[string]interface{}

// SourceItem represents an item from a data source
type SourceItem struct {
	Type     SourceItemType `json:"type"`
	Document JsonMap        `json:"document,omitempty"`
}

type SourceItemType string

const (
	// SourceItemTypeDocument - A document to index
	SourceItemTypeDocument SourceItemType = "document"
	// SourceItemTypeClose - The source is closed, can't read more from it
	SourceItemTypeClose SourceItemType = "close"
)

// Source represents a data source interface
type Source interface {
	// GetOne gets a document from the source
	GetOne(ctx context.Context) (*SourceItem, error)

	// Close closes the source and releases resources
	Close() error
}

// ConnectToSource connects to a JSONL file, or stdin when input is empty or "-"
func ConnectToSource(ctx context.Context, input string) (Source, error) {
	if input == "" || input == "-" {
		return NewBufSourceFromStdin(), nil
	}
	return NewBufSourceFromPath(input)
}
