package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

var (
	ErrEmptyCriterionID   = errors.New("criterion id cannot be empty")
	ErrInvalidSeverity    = errors.New("invalid severity")
	ErrInvalidMultiplier  = errors.New("criticism multiplier must be positive")
	ErrInvalidSelfGrade   = errors.New("self grade must be between 0 and 100")
	ErrEmptySubmissionPDF = errors.New("submission pdf path cannot be empty")
	ErrSubmissionNotFound = errors.New("submission not found")
)

var (
	ErrAllEvaluationsFailed = errors.New("all criterion evaluations failed")
	ErrNoCriteria           = errors.New("no criteria configured")
)
