package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/talentmap/internal/models"
)

// MarkdownParser parses question banks written as Markdown:
//
//	# Instrument ocean: Big Five Personality
//	Scale: 1-5
//
//	## Category openness: Openness
//	- I have a vivid imagination.
//	- (R) I avoid philosophical discussions.
//
// Optional YAML frontmatter may set default_scale for instruments without a Scale line.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// bankFrontmatter represents the optional frontmatter block
type bankFrontmatter struct {
	DefaultScale *models.Scale `yaml:"default_scale"`
}

var (
	instrumentHeadingRegex = regexp.MustCompile(`^Instrument\s+([A-Za-z0-9_-]+):\s*(.+)$`)
	categoryHeadingRegex   = regexp.MustCompile(`^Category\s+([A-Za-z0-9_-]+):\s*(.+)$`)
	scaleRegex             = regexp.MustCompile(`^Scale:\s*(-?\d+)\s*-\s*(-?\d+)$`)
)

const reverseMarker = "(R)"

// NewMarkdownParser creates a parser backed by goldmark
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// Parse reads the Markdown bank and validates it
func (p *MarkdownParser) Parse(r io.Reader) (*models.Bank, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	defaultScale := models.Scale{Min: 1, Max: 5}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		var fm bankFrontmatter
		if err := yaml.Unmarshal(frontmatter, &fm); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		if fm.DefaultScale != nil {
			defaultScale = *fm.DefaultScale
		}
	}

	doc := p.markdown.Parser().Parse(text.NewReader(content))

	bank, err := extractInstruments(doc, content, defaultScale)
	if err != nil {
		return nil, err
	}
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bank: %w", err)
	}
	return bank, nil
}

func extractInstruments(doc ast.Node, source []byte, defaultScale models.Scale) (*models.Bank, error) {
	bank := &models.Bank{}
	var inst *models.Instrument
	var cat *models.Category

	flushCategory := func() {
		if inst != nil && cat != nil {
			inst.Categories = append(inst.Categories, *cat)
		}
		cat = nil
	}
	flushInstrument := func() {
		flushCategory()
		if inst != nil {
			bank.Instruments = append(bank.Instruments, *inst)
		}
		inst = nil
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := strings.TrimSpace(extractText(node, source))
			switch node.Level {
			case 1:
				matches := instrumentHeadingRegex.FindStringSubmatch(headingText)
				if matches == nil {
					return ast.WalkSkipChildren, nil
				}
				flushInstrument()
				inst = &models.Instrument{
					ID:    models.InstrumentID(matches[1]),
					Name:  strings.TrimSpace(matches[2]),
					Scale: defaultScale,
				}
			case 2:
				matches := categoryHeadingRegex.FindStringSubmatch(headingText)
				if matches == nil {
					return ast.WalkSkipChildren, nil
				}
				if inst == nil {
					return ast.WalkStop, fmt.Errorf("category %q declared before any instrument", matches[1])
				}
				flushCategory()
				cat = &models.Category{
					Key:  matches[1],
					Name: strings.TrimSpace(matches[2]),
				}
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			if _, topLevel := node.Parent().(*ast.Document); !topLevel || inst == nil {
				return ast.WalkContinue, nil
			}
			line := strings.TrimSpace(extractText(node, source))
			if matches := scaleRegex.FindStringSubmatch(line); matches != nil {
				lo, _ := strconv.Atoi(matches[1])
				hi, _ := strconv.Atoi(matches[2])
				inst.Scale = models.Scale{Min: lo, Max: hi}
			}
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			if cat == nil {
				return ast.WalkSkipChildren, nil
			}
			item := strings.TrimSpace(extractText(node, source))
			if item == "" {
				return ast.WalkSkipChildren, nil
			}
			if rest, ok := strings.CutPrefix(item, reverseMarker); ok {
				cat.Reverse = append(cat.Reverse, strings.TrimSpace(rest))
			} else {
				cat.Questions = append(cat.Questions, item)
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract instruments: %w", err)
	}
	flushInstrument()

	return bank, nil
}

// extractText concatenates the text under n, descending into inline children.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(source))
				if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}

// extractFrontmatter splits a leading --- delimited block from the body.
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	return content, nil
}
