// api/model/decision.go
package model

// Outcome is the decision tag returned by the engine.
type Outcome string

const (
	OutcomeAllowed Outcome = "ALLOWED"
	OutcomeDenied  Outcome = "DENIED"
	OutcomeError   Outcome = "ERROR"
)

// Valid reports whether o is one of the three enumerated outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAllowed, OutcomeDenied, OutcomeError:
		return true
	}
	return false
}

// Decision is produced exactly once per request by the decision engine and is
// immutable thereafter.
type Decision struct {
	Outcome         Outcome `json:"decision"`
	Reason          string  `json:"reason"`
	RuleViolated    *string `json:"rule_violated"`
	ConfidenceScore float64 `json:"confidence_score"`
	// RetryCount records how many oracle retries were spent producing this
	// decision (0 for a first-attempt answer).
	RetryCount int `json:"retry_count,omitempty"`
}
