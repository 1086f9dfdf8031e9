// api/model/flag.go
package model

import "time"

// Verdict is the oversight pass result for a reviewed decision.
type Verdict string

const (
	VerdictClean   Verdict = "CLEAN"
	VerdictSuspect Verdict = "SUSPECT"
)

// Flag is the asynchronous oversight verdict attached to an audit entry after
// the fact, attributable by correlation id.
type Flag struct {
	Verdict       Verdict   `json:"verdict"`
	Rationale     string    `json:"rationale"`
	Confidence    float64   `json:"confidence"`
	CorrelationID string    `json:"correlation_id"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}
