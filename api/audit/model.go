// api/audit/model.go
package audit

import (
	"time"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// Entry is one immutable audit record: the full evaluation context, the
// decision made against it, the execution result if a tool ran, and the
// oversight flag if one was attached later.
type Entry struct {
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
	Context       model.EvaluationContext `json:"context"`
	Decision      model.Decision         `json:"decision"`
	Execution     *model.ExecutionResult `json:"execution,omitempty"`
	Flag          *model.Flag            `json:"flag,omitempty"`
}

// Filter narrows an audit query. Zero values match everything.
type Filter struct {
	User    string
	Feature string
	From    time.Time
	To      time.Time
	Limit   int
}
