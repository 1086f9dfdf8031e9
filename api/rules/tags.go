// api/rules/tags.go
package rules

import (
	"regexp"
	"strings"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// tagPattern matches bracketed identifiers like [ATTENDANCE], [CHECK-IN] or
// [START_DATE]. Tag extraction is the only inspection the engine ever does on
// rule text; meaning is left to the oracle.
var tagPattern = regexp.MustCompile(`\[([A-Z][A-Z0-9_-]*)\]`)

// ParseTags extracts the unique tags from a single rule, in order of first
// appearance, with inferred types attached.
func ParseTags(rule string) []model.Tag {
	matches := tagPattern.FindAllStringSubmatch(rule, -1)
	seen := make(map[string]bool, len(matches))
	tags := make([]model.Tag, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, model.Tag{Name: name, Type: inferType(name)})
	}
	return tags
}

// InferSchema derives the parameter schema for a set of rules from tag usage.
// Explicit overrides win over name-based inference.
func InferSchema(ruleTexts []string, overrides map[string]model.ParamType) map[string]model.ParamType {
	schema := make(map[string]model.ParamType)
	for _, rule := range ruleTexts {
		for _, tag := range ParseTags(rule) {
			if _, ok := schema[tag.Name]; !ok {
				schema[tag.Name] = tag.Type
			}
		}
	}
	for name, t := range overrides {
		key := strings.ToUpper(name)
		if _, ok := schema[key]; ok {
			schema[key] = t
		}
	}
	return schema
}

func inferType(name string) model.ParamType {
	switch {
	case name == "TIME" || strings.HasSuffix(name, "_TIME"):
		return model.ParamTime
	case name == "DATE" || strings.HasSuffix(name, "_DATE"):
		return model.ParamDate
	case name == "AMOUNT" || name == "QUANTITY" || name == "DAYS" ||
		strings.HasSuffix(name, "_AMOUNT") || strings.HasSuffix(name, "_COUNT"):
		return model.ParamNumber
	case name == "LOCATION" || name == "CATEGORY" || name == "TYPE" || name == "VENDOR":
		return model.ParamEnum
	default:
		return model.ParamText
	}
}
