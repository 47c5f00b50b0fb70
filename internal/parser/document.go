package parser

import (
	"fmt"
	"sort"
	"strings"
)

// ParsedDocument is the structured form of a submission that the
// evaluators consume.
type ParsedDocument struct {
	FilePath   string
	TotalPages int
	PageText   map[int]string
	CodeBlocks []CodeBlock
	Sections   []Section
	Metadata   map[string]string
}

type Section struct {
	Title      string
	Level      int
	PageNumber int
}

type CodeBlock struct {
	Content    string
	PageNumber int
	LineCount  int
	Language   string
	StartLine  int
}

func (d *ParsedDocument) GetPageText(page int) (string, bool) {
	text, ok := d.PageText[page]
	return text, ok
}

// AllText concatenates every page with a page marker, in page order.
func (d *ParsedDocument) AllText() string {
	pages := make([]int, 0, len(d.PageText))
	for p := range d.PageText {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, fmt.Sprintf("=== Page %d ===\n%s", p, d.PageText[p]))
	}
	return strings.Join(parts, "\n\n")
}

// SearchText returns the page numbers containing the keyword,
// case-insensitively, in ascending order.
func (d *ParsedDocument) SearchText(keyword string) []int {
	needle := strings.ToLower(keyword)

	var pages []int
	for page, text := range d.PageText {
		if strings.Contains(strings.ToLower(text), needle) {
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)
	return pages
}

func (d *ParsedDocument) SectionsByKeywords(keywords []string) []Section {
	var matched []Section
	for _, s := range d.Sections {
		title := strings.ToLower(s.Title)
		for _, kw := range keywords {
			if strings.Contains(title, strings.ToLower(kw)) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}
