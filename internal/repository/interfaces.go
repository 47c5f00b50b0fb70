package repository

import (
	"context"

	"github.com/skurihin/autograder/internal/domain"
)

// ResultRepository persists finished grading results. Persistence is
// best effort from the service's point of view; a failed save never
// fails a grading run.
type ResultRepository interface {
	Save(ctx context.Context, result *domain.GradingResult) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*domain.GradingResult, error)
	ListRecent(ctx context.Context, limit int) ([]domain.GradingResult, error)
	Delete(ctx context.Context, submissionID string) error
}
