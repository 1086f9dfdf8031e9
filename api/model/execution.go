// api/model/execution.go
package model

import "time"

// ExecutionResult records a tool dispatch for an ALLOWED decision. Created
// only when a tool is registered for the decided (feature, action) pair.
type ExecutionResult struct {
	Tool          string                 `json:"tool"`
	Parameters    map[string]interface{} `json:"parameters"`
	Output        map[string]interface{} `json:"output,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}
