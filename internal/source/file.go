package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = common.ErrUnsupportedFormat

// document is the object form of an item file. Files may also be a bare list.
type document struct {
	Items []model.DecisionItem `json:"items" yaml:"items"`
}

// FileSource reads items from a JSON or YAML file on every call.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name implements Source.
func (f *FileSource) Name() string {
	return filepath.Base(f.Path)
}

// Items implements Source.
func (f *FileSource) Items(ctx context.Context, _ time.Time) ([]model.DecisionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 -- path is supplied by the operator on the command line.
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item file: %w", err)
	}
	return Decode(data, formatFor(f.Path))
}

// Format is an item file encoding.
type Format string

// Supported item file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// Decode parses an item document in the given format.
// Both a bare list of items and an object with an "items" key are accepted.
func Decode(data []byte, format Format) ([]model.DecisionItem, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(data []byte) ([]model.DecisionItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []model.DecisionItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse JSON items: %w", err)
		}
		return items, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON items: %w", err)
	}
	return doc.Items, nil
}

func decodeYAML(data []byte) ([]model.DecisionItem, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML items: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var items []model.DecisionItem
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to parse YAML items: %w", err)
		}
		return items, nil
	}

	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML items: %w", err)
	}
	return doc.Items, nil
}
