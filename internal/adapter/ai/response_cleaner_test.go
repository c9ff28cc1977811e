package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean array", `["a","b"]`, `["a","b"]`},
		{"clean object", `{"status": "success"}`, `{"status": "success"}`},
		{"markdown wrapped", "```json\n[\"What's your stack?\"]\n```", `["What's your stack?"]`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here you go: [\"q1\", \"q2\"] hope it helps", `["q1", "q2"]`},
		{"brackets inside strings", `Sure {"s": "use [x] and {y}", "n": 1} done`, `{"s": "use [x] and {y}", "n": 1}`},
		{"escaped quote", `x ["say \"hi\" ]"] y`, `["say \"hi\" ]"]`},
		{"no json", "  just words  ", "just words"},
		{"unterminated", `["a", "b"`, `["a", "b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONResponse(tt.input))
		})
	}
}
