// api/registry/executor.go
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// Guard remembers which (tool, context) pairs have already executed, so a
// replayed request cannot re-run a non-idempotent side effect.
type Guard interface {
	// FirstExecution returns true the first time key is seen.
	FirstExecution(ctx context.Context, key string) (bool, error)
}

// MemoryGuard is a process-local Guard, used in tests and as a fallback when
// Redis is not configured.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]bool)}
}

func (g *MemoryGuard) FirstExecution(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

// Executor dispatches the tool bound to an ALLOWED decision. It never retries
// a failed tool on its own; idempotency only governs replayed requests.
type Executor struct {
	registry *Registry
	guard    Guard
}

func NewExecutor(registry *Registry, guard Guard) *Executor {
	return &Executor{registry: registry, guard: guard}
}

// Execute runs the registered tool for the decided (feature, action). The
// returned ExecutionResult is always non-nil when a dispatch was attempted,
// including failures, so the audit trail records what happened.
func (ex *Executor) Execute(ctx context.Context, decision *model.Decision, ectx *model.EvaluationContext, correlationID string) (*model.ExecutionResult, error) {
	if decision.Outcome != model.OutcomeAllowed {
		return nil, fmt.Errorf("refusing to execute for outcome %s", decision.Outcome)
	}

	tool, ok := ex.registry.Lookup(ectx.Feature, ectx.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %s", arbiter_errors.ErrToolNotRegistered, Key(ectx.Feature, ectx.Action))
	}

	result := &model.ExecutionResult{
		Tool:          tool.Name,
		Parameters:    ectx.Parameters,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}

	if !tool.Idempotent && ex.guard != nil {
		guardKey := fmt.Sprintf("exec:%s:%s", tool.Name, ectx.Hash())
		first, err := ex.guard.FirstExecution(ctx, guardKey)
		if err != nil {
			// A broken guard must not approve a replay.
			result.Error = err.Error()
			return result, fmt.Errorf("%w: execution guard unavailable: %v", arbiter_errors.ErrToolExecution, err)
		}
		if !first {
			result.Error = arbiter_errors.ErrDuplicateExecution.Error()
			return result, fmt.Errorf("%w: %s", arbiter_errors.ErrDuplicateExecution, tool.Name)
		}
	}

	output, err := tool.Fn(ctx, ectx.CallerID, ectx.Parameters)
	if err != nil {
		result.Error = err.Error()
		logger.Error("Tool execution failed",
			zap.String("tool", tool.Name),
			zap.String("caller", ectx.CallerID),
			zap.Error(err))
		return result, fmt.Errorf("%w: %s: %v", arbiter_errors.ErrToolExecution, tool.Name, err)
	}

	result.Success = true
	result.Output = output
	return result, nil
}
