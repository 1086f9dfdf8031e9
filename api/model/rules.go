// api/model/rules.go
package model

// RuleSet is an ordered collection of natural-language rules. It is immutable
// for the lifetime of a request; the rules repository swaps whole snapshots
// between requests.
type RuleSet struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

// ParamType is the inferred type of a tagged parameter.
type ParamType string

const (
	ParamTime   ParamType = "time"
	ParamDate   ParamType = "date"
	ParamNumber ParamType = "number"
	ParamEnum   ParamType = "enum"
	ParamText   ParamType = "text"
)

// Tag is a bracketed placeholder extracted from rule text, e.g. [ATTENDANCE]
// or [AMOUNT]. The engine never interprets rule semantics; tags are only used
// for feature/action discovery and parameter schema inference.
type Tag struct {
	Name string    `json:"name"`
	Type ParamType `json:"type"`
}
