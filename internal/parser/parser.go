// Package parser loads question banks from YAML or Markdown files.
package parser

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/talentmap/internal/models"
)

//go:embed default_bank.yaml
var defaultBankYAML []byte

// Format represents the format of a question bank file
type Format int

const (
	// FormatUnknown represents an unknown or unsupported file format
	FormatUnknown Format = iota
	// FormatMarkdown represents a Markdown (.md, .markdown) bank file
	FormatMarkdown
	// FormatYAML represents a YAML (.yaml, .yml) bank file
	FormatYAML
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Parser is the interface that all bank parsers must implement
type Parser interface {
	// Parse reads from an io.Reader and returns a validated Bank
	Parse(r io.Reader) (*models.Bank, error)
}

// DetectFormat automatically detects the bank format based on file extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// NewParser creates a new parser instance for the specified format
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// ParseFile detects the format of path, parses and validates the bank.
func ParseFile(path string) (*models.Bank, error) {
	p, err := NewParser(DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bank file: %w", err)
	}
	defer f.Close()

	bank, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bank, nil
}

// Default returns the embedded question bank.
func Default() *models.Bank {
	bank, err := NewYAMLParser().Parse(bytes.NewReader(defaultBankYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded question bank is invalid: %v", err))
	}
	return bank
}

// Load returns the bank at path, or the embedded bank when path is empty.
func Load(path string) (*models.Bank, error) {
	if path == "" {
		return Default(), nil
	}
	return ParseFile(path)
}
