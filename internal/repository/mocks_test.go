package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skurihin/autograder/internal/domain"
)

func sampleResult(id string, gradedAt time.Time) *domain.GradingResult {
	return &domain.GradingResult{
		SubmissionID:        id,
		SelfGrade:           85,
		FinalScore:          78.5,
		CriticismMultiplier: 1.2,
		ComparisonMessage:   "close to self-assessment",
		GradedAt:            gradedAt,
	}
}

func TestMockResultRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMockResultRepository()

	if err := repo.Save(ctx, sampleResult("sub-1", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetBySubmissionID(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetBySubmissionID() error = %v", err)
	}
	if got.FinalScore != 78.5 {
		t.Errorf("FinalScore = %f, want 78.5", got.FinalScore)
	}

	_, err = repo.GetBySubmissionID(ctx, "missing")
	if !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Errorf("GetBySubmissionID(missing) error = %v, want ErrSubmissionNotFound", err)
	}
}

func TestMockResultRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewMockResultRepository()

	now := time.Now()
	repo.Save(ctx, sampleResult("old", now.Add(-2*time.Hour)))
	repo.Save(ctx, sampleResult("newest", now))
	repo.Save(ctx, sampleResult("middle", now.Add(-time.Hour)))

	results, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].SubmissionID != "newest" || results[1].SubmissionID != "middle" {
		t.Errorf("order = [%s %s], want [newest middle]", results[0].SubmissionID, results[1].SubmissionID)
	}
}

func TestMockResultRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMockResultRepository()

	repo.Save(ctx, sampleResult("sub-1", time.Now()))

	if err := repo.Delete(ctx, "sub-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "sub-1"); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Errorf("second Delete() error = %v, want ErrSubmissionNotFound", err)
	}
}

func TestMockResultRepository_SaveErr(t *testing.T) {
	ctx := context.Background()
	repo := NewMockResultRepository()
	repo.SaveErr = errors.New("db down")

	if err := repo.Save(ctx, sampleResult("sub-1", time.Now())); err == nil {
		t.Error("expected injected save error")
	}
	if repo.SaveCalls != 1 {
		t.Errorf("SaveCalls = %d, want 1", repo.SaveCalls)
	}
}
