package usecase

import "github.com/fairyhunter13/ai-mock-interview/internal/domain"

// Interleave alternates custom and generated questions, custom first, and
// keeps at most domain.QuestionSetSize of them.
func Interleave(custom, generated []string) []string {
	out := make([]string, 0, domain.QuestionSetSize)
	for i := 0; i < len(custom) || i < len(generated); i++ {
		if i < len(custom) {
			out = append(out, custom[i])
		}
		if i < len(generated) {
			out = append(out, generated[i])
		}
	}
	if len(out) > domain.QuestionSetSize {
		out = out[:domain.QuestionSetSize]
	}
	return out
}
