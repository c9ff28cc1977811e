// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// MockInterviewRepository is a mock of domain.InterviewRepository.
type MockInterviewRepository struct{ mock.Mock }

func (m *MockInterviewRepository) Create(ctx domain.Context, in domain.Interview) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockInterviewRepository) Get(ctx domain.Context, id string) (domain.Interview, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Interview), args.Error(1)
}

func (m *MockInterviewRepository) List(ctx domain.Context, status domain.InterviewStatus, limit, offset int) ([]domain.Interview, error) {
	args := m.Called(ctx, status, limit, offset)
	out, _ := args.Get(0).([]domain.Interview)
	return out, args.Error(1)
}

func (m *MockInterviewRepository) Update(ctx domain.Context, in domain.Interview) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockInterviewRepository) Delete(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInterviewRepository) IncrementCandidates(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockAttemptRepository is a mock of domain.AttemptRepository.
type MockAttemptRepository struct{ mock.Mock }

func (m *MockAttemptRepository) Upsert(ctx domain.Context, a domain.Attempt) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAttemptRepository) GetBySessionID(ctx domain.Context, sessionID string) (domain.Attempt, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Attempt), args.Error(1)
}

// MockEventPublisher is a mock of domain.EventPublisher.
type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishEvaluated(ctx domain.Context, a domain.Attempt) error {
	return m.Called(ctx, a).Error(0)
}
