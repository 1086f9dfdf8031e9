// api/model/request.go
package model

// DecisionRequest is the wire format accepted from the UI collaborator.
type DecisionRequest struct {
	User       string                 `json:"user" binding:"required"`
	Feature    string                 `json:"feature" binding:"required"`
	Action     string                 `json:"action" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
}

// DecisionResponse is the wire format returned to the caller. Decision fields
// mirror the oracle contract; ExecutionResult is present only when a tool
// dispatch was attempted.
type DecisionResponse struct {
	Decision        Outcome          `json:"decision"`
	Reason          string           `json:"reason"`
	RuleViolated    *string          `json:"rule_violated"`
	ConfidenceScore float64          `json:"confidence_score"`
	CorrelationID   string           `json:"correlation_id"`
	ExecutionResult *ExecutionResult `json:"execution_result,omitempty"`
}
