package domain

import (
	"path/filepath"
	"strings"
)

// GradingRequest asks the orchestrator to grade one submission.
type GradingRequest struct {
	PDFPath      string
	TextPath     string // pre-extracted text, optional
	SelfGrade    int
	SubmissionID string // generated from the file stem when empty
}

func (r *GradingRequest) Validate() error {
	if strings.TrimSpace(r.PDFPath) == "" {
		return ErrEmptySubmissionPDF
	}
	if r.SelfGrade < 0 || r.SelfGrade > 100 {
		return ErrInvalidSelfGrade
	}
	return nil
}

func (r *GradingRequest) Sanitize() {
	r.PDFPath = strings.TrimSpace(r.PDFPath)
	r.TextPath = strings.TrimSpace(r.TextPath)
	r.SubmissionID = strings.TrimSpace(r.SubmissionID)
}

// FileStem returns the submission file name without extension.
func (r *GradingRequest) FileStem() string {
	base := filepath.Base(r.PDFPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
