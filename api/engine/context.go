// api/engine/context.go
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/rules"
)

// BuildContext produces the canonical evaluation context for a request. It is
// pure: identical inputs against the same snapshot yield byte-identical
// contexts. All failures wrap ErrValidation and occur before any oracle call.
func BuildContext(snap *rules.Snapshot, callerID, feature, action string, params map[string]interface{}) (*model.EvaluationContext, error) {
	rs, err := snap.Resolve(callerID)
	if err != nil {
		return nil, err
	}

	// Tag position carries the role: a rule's leading tag names the feature,
	// its second tag the action, and only the tags after those are parameters.
	// A sibling rule's action tag is never a parameter of this request.
	known := make(map[string]model.ParamType)
	var required []string
	featureSeen, actionSeen := false, false
	for _, rule := range rs.Rules {
		tags := rules.ParseTags(rule)
		if len(tags) == 0 || tags[0].Name != feature {
			continue
		}
		featureSeen = true
		if len(tags) < 2 || tags[1].Name != action {
			continue
		}
		actionSeen = true
		for _, tag := range tags[2:] {
			if _, ok := known[tag.Name]; !ok {
				known[tag.Name] = schemaType(snap, tag)
				required = append(required, tag.Name)
			}
		}
	}

	if !featureSeen {
		return nil, fmt.Errorf("%w: feature %s is not referenced by any rule in rule set %s",
			arbiter_errors.ErrValidation, feature, rs.ID)
	}
	if !actionSeen {
		return nil, fmt.Errorf("%w: action %s is not referenced by any rule in rule set %s",
			arbiter_errors.ErrValidation, action, rs.ID)
	}

	// Parameter keys match their tags case-insensitively and are carried in
	// tag form, so "time" and "TIME" name the same parameter. The normalized
	// map is a fresh copy; the context cannot be mutated through the caller's
	// reference, and unknown parameters pass through untouched.
	normalized := make(map[string]interface{}, len(params))
	for k, v := range params {
		normalized[strings.ToUpper(k)] = v
	}

	for _, name := range required {
		value, ok := normalized[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing required parameter %s",
				arbiter_errors.ErrValidation, name)
		}
		if err := checkType(name, known[name], value); err != nil {
			return nil, err
		}
	}

	return &model.EvaluationContext{
		CallerID:       callerID,
		Feature:        feature,
		Action:         action,
		Parameters:     normalized,
		RuleSetID:      rs.ID,
		RuleSetVersion: snap.Version,
		Rules:          rs.Rules,
		Environment:    snap.Environment,
	}, nil
}

func schemaType(snap *rules.Snapshot, tag model.Tag) model.ParamType {
	if t, ok := snap.Schema[tag.Name]; ok {
		return t
	}
	return tag.Type
}

func checkType(name string, t model.ParamType, value interface{}) error {
	fail := func(want string) error {
		return fmt.Errorf("%w: parameter %s must be a %s, got %T (%v)",
			arbiter_errors.ErrValidation, name, want, value, value)
	}
	switch t {
	case model.ParamTime:
		s, ok := value.(string)
		if !ok {
			return fail("HH:MM time string")
		}
		if _, err := time.Parse("15:04", s); err != nil {
			if _, err := time.Parse("15:04:05", s); err != nil {
				return fail("HH:MM time string")
			}
		}
	case model.ParamDate:
		s, ok := value.(string)
		if !ok {
			return fail("YYYY-MM-DD date string")
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fail("YYYY-MM-DD date string")
		}
	case model.ParamNumber:
		switch v := value.(type) {
		case float64, float32, int, int64:
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fail("number")
			}
		default:
			return fail("number")
		}
	case model.ParamEnum, model.ParamText:
		if _, ok := value.(string); !ok {
			return fail("string")
		}
	}
	return nil
}
