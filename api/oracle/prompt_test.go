// api/oracle/prompt_test.go
package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

func evalRequest() *Request {
	return &Request{
		CallerID: "alice",
		Feature:  "ATTENDANCE",
		Action:   "CHECK-IN",
		Parameters: map[string]interface{}{
			"TIME":     "09:15",
			"LOCATION": "Berlin",
		},
		Rules:       []string{"[ATTENDANCE] Users can [CHECK-IN] only between 06:00 and 10:00 at [TIME]"},
		Environment: map[string]string{"project_location": "Berlin"},
	}
}

func TestBuildEvaluationPrompt(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, buildEvaluationPrompt(evalRequest()), buildEvaluationPrompt(evalRequest()))
	})

	t.Run("ContainsContextAndContract", func(t *testing.T) {
		prompt := buildEvaluationPrompt(evalRequest())
		assert.Contains(t, prompt, "**USER:** alice")
		assert.Contains(t, prompt, "**FEATURE:** [ATTENDANCE]")
		assert.Contains(t, prompt, "- TIME: 09:15")
		assert.Contains(t, prompt, "- project_location: Berlin")
		assert.Contains(t, prompt, `"ALLOWED" or "DENIED"`)
	})

	t.Run("ParametersSorted", func(t *testing.T) {
		prompt := buildEvaluationPrompt(evalRequest())
		assert.Less(t, strings.Index(prompt, "- LOCATION"), strings.Index(prompt, "- TIME"))
	})
}

func TestBuildReviewPrompt(t *testing.T) {
	violated := "[ATTENDANCE] Users can [CHECK-IN] only between 06:00 and 10:00 at [TIME]"
	prompt := buildReviewPrompt(&ReviewRequest{
		Context: &model.EvaluationContext{
			CallerID:   "alice",
			Feature:    "ATTENDANCE",
			Action:     "CHECK-IN",
			Parameters: map[string]interface{}{"TIME": "23:30"},
			Rules:      []string{violated},
		},
		Decision: &model.Decision{
			Outcome:      model.OutcomeDenied,
			Reason:       "outside working hours",
			RuleViolated: &violated,
		},
	})

	assert.Contains(t, prompt, "**DECISION UNDER REVIEW:** DENIED")
	assert.Contains(t, prompt, "**RULE CITED:**")
	assert.Contains(t, prompt, `"CLEAN" or "SUSPECT"`)
}

func TestExtractJSON(t *testing.T) {
	plain := `{"decision": "ALLOWED"}`
	assert.Equal(t, plain, extractJSON(plain))
	assert.Equal(t, plain, extractJSON("```json\n"+plain+"\n```"))
	assert.Equal(t, plain, extractJSON("```\n"+plain+"\n```"))
	assert.Equal(t, plain, extractJSON("  "+plain+"\n"))
}
