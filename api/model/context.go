// api/model/context.go
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// EvaluationContext is the immutable snapshot handed to the reasoning oracle.
// It is built fresh per request and never mutated after construction.
type EvaluationContext struct {
	CallerID       string                 `json:"caller_id"`
	Feature        string                 `json:"feature"`
	Action         string                 `json:"action"`
	Parameters     map[string]interface{} `json:"parameters"`
	RuleSetID      string                 `json:"rule_set_id"`
	RuleSetVersion int64                  `json:"rule_set_version"`
	Rules          []string               `json:"rules"`
	Environment    map[string]string      `json:"environment"`
}

// Canonical renders the context as deterministic bytes. encoding/json sorts
// map keys, so identical inputs always produce byte-identical output.
func (c *EvaluationContext) Canonical() []byte {
	data, err := json.Marshal(c)
	if err != nil {
		// All context fields are JSON-encodable by construction.
		panic(err)
	}
	return data
}

// Hash is the sha256 of the canonical form, used as the de-duplication and
// idempotency key for this context.
func (c *EvaluationContext) Hash() string {
	sum := sha256.Sum256(c.Canonical())
	return hex.EncodeToString(sum[:])
}
