package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// InterviewService manages interviewer-authored interview configurations.
type InterviewService struct {
	Repo domain.InterviewRepository
	now  func() time.Time
}

// InterviewInput is the writable part of an Interview.
type InterviewInput struct {
	JobTitle        string                 `json:"jobTitle" validate:"required,max=200"`
	JobDescription  string                 `json:"jobDescription" validate:"required,max=20000"`
	CustomQuestions []string               `json:"customQuestions" validate:"max=20,dive,max=1000"`
	Status          domain.InterviewStatus `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(r domain.InterviewRepository) InterviewService {
	return InterviewService{Repo: r, now: func() time.Time { return time.Now().UTC() }}
}

func (in InterviewInput) normalize() (InterviewInput, error) {
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.JobDescription = strings.TrimSpace(in.JobDescription)
	in.CustomQuestions = CleanQuestions(in.CustomQuestions)
	if in.Status == "" {
		in.Status = domain.InterviewActive
	}
	switch {
	case in.JobTitle == "":
		return in, domain.InvalidArgument("jobTitle is required")
	case in.JobDescription == "":
		return in, domain.InvalidArgument("jobDescription is required")
	case !in.Status.Valid():
		return in, domain.InvalidArgument("status must be one of active, draft, archived")
	}
	return in, nil
}

// Create stores a new interview configuration.
func (s InterviewService) Create(ctx domain.Context, in InterviewInput) (domain.Interview, error) {
	in, err := in.normalize()
	if err != nil {
		return domain.Interview{}, err
	}
	now := s.now()
	iv := domain.Interview{
		ID:              uuid.NewString(),
		JobTitle:        in.JobTitle,
		JobDescription:  in.JobDescription,
		CustomQuestions: in.CustomQuestions,
		Status:          in.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	id, err := s.Repo.Create(ctx, iv)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=usecase.CreateInterview: %w", err)
	}
	iv.ID = id
	return iv, nil
}

// Get returns one interview.
func (s InterviewService) Get(ctx domain.Context, id string) (domain.Interview, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Interview{}, fmt.Errorf("%w: interview %s", domain.ErrNotFound, id)
	}
	return s.Repo.Get(ctx, id)
}

// List returns interviews, newest first. An empty status lists all of them.
func (s InterviewService) List(ctx domain.Context, status domain.InterviewStatus, limit, offset int) ([]domain.Interview, error) {
	if status != "" && !status.Valid() {
		return nil, domain.InvalidArgument("status must be one of active, draft, archived")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)
	return s.Repo.List(ctx, status, limit, offset)
}

// Update replaces the writable fields of an interview.
func (s InterviewService) Update(ctx domain.Context, id string, in InterviewInput) (domain.Interview, error) {
	in, err := in.normalize()
	if err != nil {
		return domain.Interview{}, err
	}
	iv, err := s.Get(ctx, id)
	if err != nil {
		return domain.Interview{}, err
	}
	iv.JobTitle = in.JobTitle
	iv.JobDescription = in.JobDescription
	iv.CustomQuestions = in.CustomQuestions
	iv.Status = in.Status
	iv.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, iv); err != nil {
		return domain.Interview{}, fmt.Errorf("op=usecase.UpdateInterview: %w", err)
	}
	return iv, nil
}

// Delete removes an interview.
func (s InterviewService) Delete(ctx domain.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: interview %s", domain.ErrNotFound, id)
	}
	return s.Repo.Delete(ctx, id)
}
