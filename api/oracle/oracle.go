// api/oracle/oracle.go
package oracle

import (
	"context"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// Request is the fixed schema sent to the reasoning oracle. It carries the
// full evaluation context; the oracle is a black box behind this contract.
type Request struct {
	CallerID    string                 `json:"caller_id"`
	Feature     string                 `json:"feature"`
	Action      string                 `json:"action"`
	Parameters  map[string]interface{} `json:"parameters"`
	Rules       []string               `json:"rules"`
	Environment map[string]string      `json:"environment"`
}

// Response mirrors the decision wire schema. Any deviation from it is a
// contract violation the engine treats as ErrOracleSchema.
type Response struct {
	Decision        string  `json:"decision"`
	Reason          string  `json:"reason"`
	RuleViolated    *string `json:"rule_violated"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// ReviewRequest asks a second oracle whether a decision already taken looks
// consistent with the rule set it was evaluated against.
type ReviewRequest struct {
	Context  *model.EvaluationContext `json:"context"`
	Decision *model.Decision          `json:"decision"`
}

// ReviewResponse is the oversight verdict schema.
type ReviewResponse struct {
	Verdict    string  `json:"verdict"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
}

// Oracle interprets natural-language rules against a context. Implementations
// may be probabilistic; the engine validates every response strictly.
type Oracle interface {
	Evaluate(ctx context.Context, req *Request) (*Response, error)
}

// Reviewer independently judges a (context, decision) pair for the oversight
// pass.
type Reviewer interface {
	Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error)
}
