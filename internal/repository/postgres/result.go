package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skurihin/autograder/internal/domain"
)

type ResultRepo struct {
	db *DB
}

func NewResultRepo(db *DB) *ResultRepo {
	return &ResultRepo{db: db}
}

func (r *ResultRepo) Save(ctx context.Context, result *domain.GradingResult) error {
	evaluations, err := json.Marshal(result.Evaluations)
	if err != nil {
		return fmt.Errorf("marshal evaluations: %w", err)
	}
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO grading_results
			(submission_id, self_grade, final_score, criticism_multiplier,
			 evaluations, breakdown, comparison_message, graded_at, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (submission_id) DO UPDATE SET
			self_grade = EXCLUDED.self_grade,
			final_score = EXCLUDED.final_score,
			criticism_multiplier = EXCLUDED.criticism_multiplier,
			evaluations = EXCLUDED.evaluations,
			breakdown = EXCLUDED.breakdown,
			comparison_message = EXCLUDED.comparison_message,
			graded_at = EXCLUDED.graded_at,
			processing_ms = EXCLUDED.processing_ms
	`

	_, err = r.db.Pool.Exec(ctx, query,
		result.SubmissionID,
		result.SelfGrade,
		result.FinalScore,
		result.CriticismMultiplier,
		evaluations,
		breakdown,
		result.ComparisonMessage,
		result.GradedAt,
		result.ProcessingTime.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save grading result: %w", err)
	}

	return nil
}

func (r *ResultRepo) GetBySubmissionID(ctx context.Context, submissionID string) (*domain.GradingResult, error) {
	query := `
		SELECT submission_id, self_grade, final_score, criticism_multiplier,
		       evaluations, breakdown, comparison_message, graded_at, processing_ms
		FROM grading_results
		WHERE submission_id = $1
	`

	result, err := scanResult(r.db.Pool.QueryRow(ctx, query, submissionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get grading result: %w", err)
	}

	return result, nil
}

func (r *ResultRepo) ListRecent(ctx context.Context, limit int) ([]domain.GradingResult, error) {
	query := `
		SELECT submission_id, self_grade, final_score, criticism_multiplier,
		       evaluations, breakdown, comparison_message, graded_at, processing_ms
		FROM grading_results
		ORDER BY graded_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list grading results: %w", err)
	}
	defer rows.Close()

	var results []domain.GradingResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grading result: %w", err)
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grading results: %w", err)
	}

	return results, nil
}

func (r *ResultRepo) Delete(ctx context.Context, submissionID string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM grading_results WHERE submission_id = $1`, submissionID)
	if err != nil {
		return fmt.Errorf("delete grading result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.GradingResult, error) {
	var (
		result       domain.GradingResult
		evaluations  []byte
		breakdown    []byte
		processingMS int64
	)

	err := row.Scan(
		&result.SubmissionID,
		&result.SelfGrade,
		&result.FinalScore,
		&result.CriticismMultiplier,
		&evaluations,
		&breakdown,
		&result.ComparisonMessage,
		&result.GradedAt,
		&processingMS,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(evaluations, &result.Evaluations); err != nil {
		return nil, fmt.Errorf("unmarshal evaluations: %w", err)
	}
	if err := json.Unmarshal(breakdown, &result.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	result.ProcessingTime = time.Duration(processingMS) * time.Millisecond

	return &result, nil
}
