package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/skurihin/autograder/internal/domain"
)

type MockResultRepository struct {
	mu      sync.RWMutex
	results map[string]*domain.GradingResult

	SaveErr   error
	SaveCalls int
}

func NewMockResultRepository() *MockResultRepository {
	return &MockResultRepository{
		results: make(map[string]*domain.GradingResult),
	}
}

func (m *MockResultRepository) Save(ctx context.Context, result *domain.GradingResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}

	copied := *result
	m.results[result.SubmissionID] = &copied
	return nil
}

func (m *MockResultRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*domain.GradingResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.results[submissionID]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	copied := *result
	return &copied, nil
}

func (m *MockResultRepository) ListRecent(ctx context.Context, limit int) ([]domain.GradingResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]domain.GradingResult, 0, len(m.results))
	for _, r := range m.results {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].GradedAt.After(all[j].GradedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockResultRepository) Delete(ctx context.Context, submissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.results[submissionID]; !ok {
		return domain.ErrSubmissionNotFound
	}
	delete(m.results, submissionID)
	return nil
}

var _ ResultRepository = (*MockResultRepository)(nil)
