package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// MockLLMGateway is a mock of domain.LLMGateway.
type MockLLMGateway struct{ mock.Mock }

func (m *MockLLMGateway) GenerateQuestions(ctx domain.Context, prompt string) ([]string, error) {
	args := m.Called(ctx, prompt)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

func (m *MockLLMGateway) Evaluate(ctx domain.Context, prompt string) (domain.Evaluation, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(domain.Evaluation), args.Error(1)
}

func (m *MockLLMGateway) GenerateText(ctx domain.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockDocumentAnalyzer is a mock of domain.DocumentAnalyzer.
type MockDocumentAnalyzer struct{ mock.Mock }

func (m *MockDocumentAnalyzer) Analyze(ctx domain.Context, document []byte, contentType string) (string, error) {
	args := m.Called(ctx, document, contentType)
	return args.String(0), args.Error(1)
}

// MockSpeechTokenIssuer is a mock of domain.SpeechTokenIssuer.
type MockSpeechTokenIssuer struct{ mock.Mock }

func (m *MockSpeechTokenIssuer) IssueToken(ctx domain.Context) (domain.SpeechToken, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SpeechToken), args.Error(1)
}

// MockSpeechSynthesizer is a mock of domain.SpeechSynthesizer.
type MockSpeechSynthesizer struct{ mock.Mock }

func (m *MockSpeechSynthesizer) Synthesize(ctx domain.Context, text string) ([]byte, error) {
	args := m.Called(ctx, text)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}
