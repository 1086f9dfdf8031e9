// api/util/validation_util.go

package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

var tagNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*$`)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// ValidateDecisionRequest checks the request shape before the rule set is
// even resolved. Semantic checks against the rules happen later, in the
// context builder.
func (v *ValidationUtil) ValidateDecisionRequest(req model.DecisionRequest) error {
	if req.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if req.Feature == "" {
		return fmt.Errorf("feature cannot be empty")
	}
	if req.Action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !tagNamePattern.MatchString(req.Feature) {
		return fmt.Errorf("feature must be an upper-case tag name, got %q", req.Feature)
	}
	if !tagNamePattern.MatchString(req.Action) {
		return fmt.Errorf("action must be an upper-case tag name, got %q", req.Action)
	}
	// Parameter keys are matched to their tags case-insensitively later, so
	// only the shape is checked here.
	for name := range req.Parameters {
		if !tagNamePattern.MatchString(strings.ToUpper(name)) {
			return fmt.Errorf("parameter name must be a tag name, got %q", name)
		}
	}
	return nil
}
