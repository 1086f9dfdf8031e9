// api/oracle/prompt.go
package oracle

import (
	"fmt"
	"sort"
	"strings"
)

// buildEvaluationPrompt renders the evaluation request for the model.
// Parameters and environment facts are emitted in sorted order so that
// identical requests produce identical prompts.
func buildEvaluationPrompt(req *Request) string {
	var b strings.Builder
	b.WriteString("You are an intelligent rule evaluator for an agentic application system.\n\n")
	fmt.Fprintf(&b, "**USER:** %s\n", req.CallerID)
	fmt.Fprintf(&b, "**FEATURE:** [%s]\n", req.Feature)
	fmt.Fprintf(&b, "**ACTION:** %s\n", req.Action)

	b.WriteString("**PARAMETERS:**\n")
	for _, name := range sortedKeys(req.Parameters) {
		fmt.Fprintf(&b, "- %s: %v\n", name, req.Parameters[name])
	}

	if len(req.Environment) > 0 {
		b.WriteString("**ENVIRONMENT:**\n")
		names := make([]string, 0, len(req.Environment))
		for name := range req.Environment {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, req.Environment[name])
		}
	}

	b.WriteString("\n**APPLICABLE RULES:**\n")
	for _, rule := range req.Rules {
		fmt.Fprintf(&b, "- %s\n", rule)
	}

	fmt.Fprintf(&b, `
**EVALUATION INSTRUCTIONS:**
1. Identify which rules apply to the [%s] feature and %s action
2. Check if the provided parameters satisfy the rule conditions
3. Consider any time, location, or other constraints mentioned in the rules
4. Provide a clear decision with reasoning

Respond with a single JSON object and nothing else:
{"decision": "ALLOWED" or "DENIED", "reason": "<brief explanation>", "rule_violated": "<violated rule text or null>", "confidence_score": <0.0-1.0>}
`, req.Feature, req.Action)
	return b.String()
}

// buildReviewPrompt renders the oversight request for the second model.
func buildReviewPrompt(req *ReviewRequest) string {
	var b strings.Builder
	b.WriteString("You are an independent auditor reviewing a decision already taken by a rule evaluator.\n\n")
	fmt.Fprintf(&b, "**USER:** %s\n", req.Context.CallerID)
	fmt.Fprintf(&b, "**FEATURE:** [%s]\n", req.Context.Feature)
	fmt.Fprintf(&b, "**ACTION:** %s\n", req.Context.Action)

	b.WriteString("**PARAMETERS:**\n")
	for _, name := range sortedKeys(req.Context.Parameters) {
		fmt.Fprintf(&b, "- %s: %v\n", name, req.Context.Parameters[name])
	}

	b.WriteString("\n**RULES THE DECISION WAS EVALUATED AGAINST:**\n")
	for _, rule := range req.Context.Rules {
		fmt.Fprintf(&b, "- %s\n", rule)
	}

	fmt.Fprintf(&b, "\n**DECISION UNDER REVIEW:** %s\n", req.Decision.Outcome)
	fmt.Fprintf(&b, "**STATED REASON:** %s\n", req.Decision.Reason)
	if req.Decision.RuleViolated != nil {
		fmt.Fprintf(&b, "**RULE CITED:** %s\n", *req.Decision.RuleViolated)
	}

	b.WriteString(`
Judge whether the decision is consistent with the rules: look for outcome
disagreement, reasoning that does not follow from any rule, or a cited rule
that does not exist.

Respond with a single JSON object and nothing else:
{"verdict": "CLEAN" or "SUSPECT", "rationale": "<brief explanation>", "confidence": <0.0-1.0>}
`)
	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
