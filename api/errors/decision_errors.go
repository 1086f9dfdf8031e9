// api/errors/decision_errors.go
package errors

import "errors"

var (
	ErrRuleSetNotFound    = errors.New("no rule set assigned to caller")
	ErrValidation         = errors.New("invalid decision request")
	ErrOracleTimeout      = errors.New("oracle call timed out")
	ErrOracleSchema       = errors.New("oracle response violates contract")
	ErrToolNotRegistered  = errors.New("no tool registered for feature/action")
	ErrToolExecution      = errors.New("tool execution failed")
	ErrDuplicateExecution = errors.New("duplicate execution of non-idempotent tool")
	ErrOversightDegraded  = errors.New("oversight review skipped")
	ErrAuditUnavailable   = errors.New("audit store unavailable")
	ErrInternalServer     = errors.New("internal server error")
)
