package gemini

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

func ratingEnum() []string {
	out := make([]string, len(domain.Ratings))
	for i, r := range domain.Ratings {
		out[i] = string(r)
	}
	return out
}

// questionsSchema constrains the reply to an array of question strings.
func questionsSchema() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
}

// evaluationSchema mirrors domain.Evaluation; every field is required.
func evaluationSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	rating := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: ratingEnum()}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"individualEvaluations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": str(),
						"summary":  str(),
						"rating":   rating(),
					},
					Required: []string{"question", "summary", "rating"},
				},
			},
			"overallEvaluation": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"summary":             str(),
					"rating":              rating(),
					"strengths":           {Type: genai.TypeArray, Items: str()},
					"areasForImprovement": {Type: genai.TypeArray, Items: str()},
				},
				Required: []string{"summary", "rating", "strengths", "areasForImprovement"},
			},
		},
		Required: []string{"individualEvaluations", "overallEvaluation"},
	}
}

// evaluationJSONSchema is the draft-04 equivalent of evaluationSchema, used to
// check replies locally since the model's schema adherence is best effort.
func evaluationJSONSchema() map[string]any {
	strArr := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	rating := map[string]any{"type": "string", "enum": ratingEnum()}
	return map[string]any{
		"type":     "object",
		"required": []string{"individualEvaluations", "overallEvaluation"},
		"properties": map[string]any{
			"individualEvaluations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"question", "summary", "rating"},
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"summary":  map[string]any{"type": "string"},
						"rating":   rating,
					},
				},
			},
			"overallEvaluation": map[string]any{
				"type":     "object",
				"required": []string{"summary", "rating", "strengths", "areasForImprovement"},
				"properties": map[string]any{
					"summary":             map[string]any{"type": "string"},
					"rating":              rating,
					"strengths":           strArr,
					"areasForImprovement": strArr,
				},
			},
		},
	}
}

type evaluationValidator struct{ schema *gojsonschema.Schema }

func newEvaluationValidator() (*evaluationValidator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(evaluationJSONSchema()))
	if err != nil {
		return nil, fmt.Errorf("op=gemini.schema: %w", err)
	}
	return &evaluationValidator{schema: s}, nil
}

// Validate returns a MalformedResponseError listing every violation in doc.
func (v *evaluationValidator) Validate(doc string) error {
	res, err := v.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return &domain.MalformedResponseError{Service: provider, Reason: "evaluation is not valid JSON: " + err.Error()}
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return &domain.MalformedResponseError{Service: provider, Reason: strings.Join(msgs, "; ")}
}
