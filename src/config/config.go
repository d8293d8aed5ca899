package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"haystack/src/queryrange"
	"haystack/src/textcase"
)

const VERSION = 1

const (
	// DefaultContentField is the document field searched when none is configured
	DefaultContentField = "content"

	// DefaultMatchTransform is applied to matches when rendering highlights
	DefaultMatchTransform = textcase.TransformUpper

	// DefaultOtherTransform is applied to the text in between matches
	DefaultOtherTransform = textcase.TransformIdentity
)

// ErrInvalidConfig is returned when a corpus configuration fails validation
var ErrInvalidConfig = errors.New("invalid corpus config")

// CorpusConfig represents the configuration of a searchable document corpus
type CorpusConfig struct {
	Name         string          `json:"name" yaml:"name"`
	Path         string          `json:"path" yaml:"path"`
	Version      uint32          `json:"version" yaml:"version"`
	ContentField string          `json:"content_field" yaml:"content_field"`
	IDField      string          `json:"id_field,omitempty" yaml:"id_field,omitempty"`
	Highlight    HighlightConfig `json:"highlight" yaml:"highlight"`
}

// HighlightConfig names the transforms used to render search results
type HighlightConfig struct {
	Match string `json:"match" yaml:"match"`
	Other string `json:"other" yaml:"other"`
}

// Transforms resolves the configured transform names
func (h HighlightConfig) Transforms() (match, other queryrange.Func, err error) {
	match, err = textcase.Lookup(h.Match)
	if err != nil {
		return nil, nil, fmt.Errorf("highlight.match: %w", err)
	}
	other, err = textcase.Lookup(h.Other)
	if err != nil {
		return nil, nil, fmt.Errorf("highlight.other: %w", err)
	}
	return match, other, nil
}

// ApplyDefaults fills in unset optional fields
func (c *CorpusConfig) ApplyDefaults() {
	if c.Version == 0 {
		c.Version = VERSION
	}
	if c.ContentField == "" {
		c.ContentField = DefaultContentField
	}
	if c.Highlight.Match == "" {
		c.Highlight.Match = DefaultMatchTransform
	}
	if c.Highlight.Other == "" {
		c.Highlight.Other = DefaultOtherTransform
	}
}

// Validate checks that the config can be used to create a corpus
func (c *CorpusConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	}
	if c.Path == "" {
		return fmt.Errorf("%w: path must not be empty", ErrInvalidConfig)
	}
	if c.Version > VERSION {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidConfig, c.Version)
	}
	if _, _, err := c.Highlight.Transforms(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// FromString loads a corpus configuration from YAML or JSON
func (c *CorpusConfig) FromString(s string) error {
	// Try YAML first, then JSON
	if err := yaml.Unmarshal([]byte(s), c); err != nil {
		logrus.Debugf("Config is not valid YAML, trying JSON: %v", err)
		if err := json.Unmarshal([]byte(s), c); err != nil {
			return fmt.Errorf("failed to parse config as YAML or JSON: %w", err)
		}
	}

	c.ApplyDefaults()
	return c.Validate()
}

// LoadCorpusConfigFromPath loads a corpus configuration from a file path
func LoadCorpusConfigFromPath(path string) (*CorpusConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config CorpusConfig
	if err := config.FromString(string(data)); err != nil {
		return nil, err
	}

	return &config, nil
}
