package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const maxPDFSize = 100 * 1024 * 1024

// ValidatePDF checks that the file exists, has the .pdf extension,
// carries PDF magic bytes, and fits the size limit. Validation never
// reads past the detection header, so large files stay cheap.
func ValidatePDF(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("stat file: %w", err)
	}

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	if info.Size() > maxPDFSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("detect file type: %w", err)
	}
	if !mt.Is("application/pdf") {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, mt.String())
	}

	return nil
}
