package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestTextParser_Parse(t *testing.T) {
	p := NewTextParser(zap.NewNop())

	t.Run("splits pages on form feed", func(t *testing.T) {
		path := writeTemp(t, "doc.txt", "page one text\fpage two text\fpage three text")

		doc, err := p.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("Parse() unexpected error = %v", err)
		}
		if doc.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", doc.TotalPages)
		}
		text, ok := doc.GetPageText(2)
		if !ok || text != "page two text" {
			t.Errorf("GetPageText(2) = %q, %v", text, ok)
		}
	})

	t.Run("single page without form feeds", func(t *testing.T) {
		path := writeTemp(t, "doc.txt", "just one page of prose")

		doc, err := p.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("Parse() unexpected error = %v", err)
		}
		if doc.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1", doc.TotalPages)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := p.Parse(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("Parse() error = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeTemp(t, "empty.txt", "   \n  ")
		_, err := p.Parse(context.Background(), path)
		if !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("Parse() error = %v, want ErrEmptyDocument", err)
		}
	})

	t.Run("detects code blocks", func(t *testing.T) {
		content := "Introduction to the system.\n\n" +
			"def process(items):\n" +
			"    for item in items:\n" +
			"        print(item)\n" +
			"    return len(items)\n\n" +
			"The function above processes items."
		path := writeTemp(t, "code.txt", content)

		doc, err := p.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("Parse() unexpected error = %v", err)
		}
		if len(doc.CodeBlocks) == 0 {
			t.Fatal("expected at least one code block")
		}
		if doc.CodeBlocks[0].Language != "python" {
			t.Errorf("Language = %q, want %q", doc.CodeBlocks[0].Language, "python")
		}
		if doc.CodeBlocks[0].LineCount < 3 {
			t.Errorf("LineCount = %d, want >= 3", doc.CodeBlocks[0].LineCount)
		}
	})

	t.Run("short code runs are ignored", func(t *testing.T) {
		path := writeTemp(t, "short.txt", "Some prose here\nx = 1\nMore prose follows after that line")

		doc, err := p.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("Parse() unexpected error = %v", err)
		}
		for _, b := range doc.CodeBlocks {
			if b.LineCount < minCodeBlockLines {
				t.Errorf("code block with %d lines kept, want >= %d", b.LineCount, minCodeBlockLines)
			}
		}
	})

	t.Run("detects sections", func(t *testing.T) {
		content := "ARCHITECTURE OVERVIEW\n" +
			"the system consists of several parts described below.\n" +
			"Testing Strategy\n" +
			"unit tests cover the scoring paths.\n"
		path := writeTemp(t, "sections.txt", content)

		doc, err := p.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("Parse() unexpected error = %v", err)
		}

		var foundUpper, foundMixed bool
		for _, s := range doc.Sections {
			if s.Title == "ARCHITECTURE OVERVIEW" && s.Level == 1 {
				foundUpper = true
			}
			if s.Title == "Testing Strategy" && s.Level == 2 {
				foundMixed = true
			}
		}
		if !foundUpper {
			t.Error("all-caps heading not detected at level 1")
		}
		if !foundMixed {
			t.Error("mixed-case heading not detected at level 2")
		}
	})
}

func TestParsedDocument_SearchText(t *testing.T) {
	doc := &ParsedDocument{
		PageText: map[int]string{
			1: "Introduction and Motivation",
			2: "The testing approach",
			3: "More about TESTING coverage",
		},
	}

	pages := doc.SearchText("testing")
	if len(pages) != 2 || pages[0] != 2 || pages[1] != 3 {
		t.Errorf("SearchText() = %v, want [2 3]", pages)
	}

	if got := doc.SearchText("absent"); len(got) != 0 {
		t.Errorf("SearchText(absent) = %v, want empty", got)
	}
}

func TestParsedDocument_SectionsByKeywords(t *testing.T) {
	doc := &ParsedDocument{
		Sections: []Section{
			{Title: "Unit Testing Strategy", PageNumber: 4},
			{Title: "Deployment", PageNumber: 7},
		},
	}

	matched := doc.SectionsByKeywords([]string{"testing", "coverage"})
	if len(matched) != 1 || matched[0].PageNumber != 4 {
		t.Errorf("SectionsByKeywords() = %v, want the testing section", matched)
	}
}
