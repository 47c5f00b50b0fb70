package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const minCodeBlockLines = 3

// TextParser parses pre-extracted submission text. Pages are separated
// by form feeds, the way PDF text extractors emit them; a file without
// form feeds is treated as a single page.
type TextParser struct {
	logger *zap.Logger
}

func NewTextParser(logger *zap.Logger) *TextParser {
	return &TextParser{logger: logger}
}

func (p *TextParser) Parse(ctx context.Context, path string) (*ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	pages := strings.Split(text, "\f")
	pageText := make(map[int]string, len(pages))
	for i, page := range pages {
		pageText[i+1] = page
	}

	doc := &ParsedDocument{
		FilePath:   path,
		TotalPages: len(pages),
		PageText:   pageText,
		CodeBlocks: detectCodeBlocks(pageText),
		Sections:   detectSections(pageText),
		Metadata: map[string]string{
			"parser": "text",
			"ext":    filepath.Ext(path),
		},
	}

	p.logger.Debug("document parsed",
		zap.String("path", path),
		zap.Int("pages", doc.TotalPages),
		zap.Int("sections", len(doc.Sections)),
		zap.Int("code_blocks", len(doc.CodeBlocks)),
	)

	return doc, nil
}

var codeIndicators = []string{
	"def ", "class ", "import ", "from ", "return ", "__init__",
	"public ", "private ", "void ", "int ", "String ",
	"const ", "let ", "var ", "function ",
	"if (", "for (", "while (", "switch (", "=>",
	"func ", "package ", ":=",
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s{4,}`),
	regexp.MustCompile(`[{}();]`),
	regexp.MustCompile(`[=!<>]=`),
	regexp.MustCompile(`\w+\(`),
	regexp.MustCompile(`->\s*\w+`),
	regexp.MustCompile(`//|/\*|\*/`),
	regexp.MustCompile(`#\s*\w+`),
}

func looksLikeCode(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	for _, ind := range codeIndicators {
		if strings.Contains(line, ind) {
			return true
		}
	}
	for _, pat := range codePatterns {
		if pat.MatchString(line) {
			return true
		}
	}
	return false
}

func detectCodeBlocks(pageText map[int]string) []CodeBlock {
	var blocks []CodeBlock

	flush := func(page, start int, lines []string) []CodeBlock {
		if len(lines) < minCodeBlockLines {
			return blocks
		}
		content := strings.Join(lines, "\n")
		return append(blocks, CodeBlock{
			Content:    content,
			PageNumber: page,
			LineCount:  len(lines),
			Language:   DetectLanguage(content),
			StartLine:  start,
		})
	}

	for page := 1; page <= len(pageText); page++ {
		lines := strings.Split(pageText[page], "\n")
		var current []string
		inBlock := false
		blockStart := 0

		for i, line := range lines {
			indented := inBlock && strings.TrimSpace(line) != "" &&
				(strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t"))
			isCode := looksLikeCode(line) || indented

			switch {
			case isCode && !inBlock:
				inBlock = true
				blockStart = i
				current = []string{line}
			case isCode:
				current = append(current, line)
			case inBlock && strings.TrimSpace(line) == "" && len(current) > 0:
				// blank lines inside a block do not terminate it
				current = append(current, line)
			case inBlock:
				blocks = flush(page, blockStart, current)
				current = nil
				inBlock = false
			}
		}

		if inBlock {
			blocks = flush(page, blockStart, current)
		}
	}

	return blocks
}

// detectSections treats short standalone lines starting with a capital
// as headings; all-caps lines rank one level higher.
func detectSections(pageText map[int]string) []Section {
	var sections []Section

	for page := 1; page <= len(pageText); page++ {
		for _, line := range strings.Split(pageText[page], "\n") {
			line = strings.TrimSpace(line)
			if len(line) <= 5 || len(line) >= 100 {
				continue
			}
			if looksLikeCode(line) || strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") {
				continue
			}
			first := []rune(line)[0]
			if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
				continue
			}
			level := 2
			if line == strings.ToUpper(line) && strings.ContainsFunc(line, unicode.IsLetter) {
				level = 1
			}
			sections = append(sections, Section{
				Title:      line,
				Level:      level,
				PageNumber: page,
			})
		}
	}

	return sections
}
