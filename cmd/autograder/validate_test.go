package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skurihin/autograder/internal/domain"
	"github.com/skurihin/autograder/internal/parser"
)

func writeSubmission(t *testing.T, dir string) string {
	t.Helper()
	pdfPath := filepath.Join(dir, "report.pdf")
	pdfHeader := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	if err := os.WriteFile(pdfPath, pdfHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	text := "Project Report\n\nArchitecture overview.\n\fTesting\n\nUnit tests cover the engine.\n"
	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return pdfPath
}

func runValidate(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"validate"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestValidateCmd(t *testing.T) {
	pdfPath := writeSubmission(t, t.TempDir())

	out, err := runValidate(t, pdfPath, "--self-grade", "85")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}
	for _, want := range []string{"request:   ok", "pdf:       ok", "2 pages", "ready to grade"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCmd_BadSelfGrade(t *testing.T) {
	pdfPath := writeSubmission(t, t.TempDir())

	_, err := runValidate(t, pdfPath, "--self-grade", "150")
	if !errors.Is(err, domain.ErrInvalidSelfGrade) {
		t.Errorf("error = %v, want ErrInvalidSelfGrade", err)
	}
}

func TestValidateCmd_MissingPDF(t *testing.T) {
	_, err := runValidate(t, filepath.Join(t.TempDir(), "absent.pdf"), "--self-grade", "85")
	if !errors.Is(err, parser.ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

func TestValidateCmd_MissingText(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "report.pdf")
	pdfHeader := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	if err := os.WriteFile(pdfPath, pdfHeader, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runValidate(t, pdfPath, "--self-grade", "85")
	if !errors.Is(err, parser.ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound for the missing text sibling", err)
	}
}
