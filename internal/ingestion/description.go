// Package ingestion prepares captured job postings for classification:
// HTML descriptions are reduced to clean text and postings are validated
// before entering the pipeline.
package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// CleanDescription reduces an HTML job description to readable plain text.
// Script and style content is dropped, block elements become line breaks,
// and runs of whitespace collapse. Plain text input passes through with
// only whitespace normalization.
func CleanDescription(raw string) (string, error) {
	if !strings.Contains(raw, "<") {
		return collapseWhitespace(raw), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse description HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	// Force line breaks at block boundaries so headings and list items
	// stay separated after Text() flattens the tree.
	doc.Find("br, p, div, li, h1, h2, h3, h4, ul, ol, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return collapseWhitespace(doc.Text()), nil
}

// Prepare cleans the posting's description in place and validates the
// result. The cleaned description length is the guard baseline for any
// later rewriting of posting text.
func Prepare(posting *types.JobPosting) error {
	cleaned, err := CleanDescription(posting.Description)
	if err != nil {
		return err
	}
	posting.Description = cleaned

	if err := posting.Validate(); err != nil {
		return err
	}
	return nil
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
