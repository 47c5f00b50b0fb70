package parser

import (
	"context"
	"errors"
)

var (
	ErrFileNotFound  = errors.New("document file not found")
	ErrEmptyDocument = errors.New("document is empty")
	ErrNotPDF        = errors.New("file is not a PDF")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
)

// Parser turns a submission into a ParsedDocument.
type Parser interface {
	Parse(ctx context.Context, path string) (*ParsedDocument, error)
}
