package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// MsgTextRequired is returned when name extraction gets no text.
const MsgTextRequired = `Request body must contain a non-empty "text" string.`

// NameService extracts a candidate name from CV text.
type NameService struct {
	LLM         domain.LLMGateway
	MaxCVTokens int
}

// NewNameService constructs a NameService.
func NewNameService(llm domain.LLMGateway, maxCVTokens int) NameService {
	return NameService{LLM: llm, MaxCVTokens: maxCVTokens}
}

// Extract returns the candidate's full name, or NameSentinel when the text is
// not a CV or holds no name.
func (s NameService) Extract(ctx domain.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.InvalidArgument(MsgTextRequired)
	}
	reply, err := s.LLM.GenerateText(ctx, BuildNamePrompt(capText(text, s.MaxCVTokens)))
	if err != nil {
		return "", fmt.Errorf("op=usecase.ExtractName: %w", err)
	}
	return normalizeName(reply), nil
}

// IsSentinelName reports whether name is the no-name reply.
func IsSentinelName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), NameSentinel)
}

func normalizeName(reply string) string {
	name := strings.TrimSpace(reply)
	if i := strings.IndexByte(name, '\n'); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.Trim(name, "\"'`*. ")
	switch strings.ToLower(name) {
	case "", NameSentinel, "interviewer":
		return NameSentinel
	}
	return name
}
