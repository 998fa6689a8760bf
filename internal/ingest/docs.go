package ingest

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"xyian-bot/internal/knowledge"
)

// minSectionLen is the minimum body length for a documentation section to
// become a fragment; shorter sections are headers without substance.
const minSectionLen = 100

// SectionExtractor pulls fragments out of curated markdown documentation.
// Each ## or deeper heading starts a section; the section body becomes one
// fragment labeled with the document name and a slug of the heading.
type SectionExtractor struct {
	parser goldmark.Markdown
}

// NewSectionExtractor creates a new markdown section extractor.
func NewSectionExtractor() *SectionExtractor {
	return &SectionExtractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extract parses markdown content and returns one fragment per substantial
// section. docName is the source document name used as the label prefix.
func (e *SectionExtractor) Extract(content []byte, docName string) []knowledge.Fragment {
	if len(content) == 0 {
		return nil
	}

	reader := text.NewReader(content)
	doc := e.parser.Parser().Parse(reader)

	var fragments []knowledge.Fragment
	var heading string
	var body strings.Builder

	flush := func() {
		section := strings.TrimSpace(body.String())
		body.Reset()
		if heading == "" || len(section) < minSectionLen {
			return
		}
		fragments = append(fragments, knowledge.Fragment{
			Text:  section,
			Label: docName + "_" + slugify(heading),
		})
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			// Level-1 headings are document titles in the curated docs;
			// sections start at level 2.
			flush()
			if node.Level >= 2 {
				heading = extractText(node, content)
			} else {
				heading = ""
			}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			segment := node.Segment
			body.Write(segment.Value(content))
			return ast.WalkContinue, nil

		case *ast.String:
			body.Write(node.Value)
			return ast.WalkContinue, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem:
			if body.Len() > 0 {
				body.WriteByte(' ')
			}
			return ast.WalkContinue, nil

		default:
			return ast.WalkContinue, nil
		}
	})
	flush()

	return fragments
}

// extractText collects the plain text content of a node and its children.
func extractText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// slugify lowers a heading into a label-safe key: letters and digits kept,
// everything else collapsed to single underscores.
func slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
