package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harrison/talentmap/internal/models"
)

// YAMLParser parses YAML-formatted question banks
type YAMLParser struct{}

// NewYAMLParser creates a new YAML parser instance
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

// Parse decodes a bank and validates it. Unknown fields are rejected.
func (p *YAMLParser) Parse(r io.Reader) (*models.Bank, error) {
	var bank models.Bank
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bank); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bank: %w", err)
	}
	return &bank, nil
}
