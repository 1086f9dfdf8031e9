// api/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/oracle"
)

// Cache de-duplicates oracle calls for identical contexts inside a short
// window. It is an optimization: every method is best-effort and a miss or
// failure simply means a fresh oracle call.
type Cache interface {
	GetDecision(ctx context.Context, key string) (*model.Decision, bool)
	PutDecision(ctx context.Context, key string, d *model.Decision)
}

// Config bounds the oracle interaction.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// Engine turns an evaluation context into a decision by consulting the
// reasoning oracle. It fails closed: every failure mode collapses into
// Decision{ERROR}, never ALLOWED. The engine never calls a tool.
type Engine struct {
	oracle oracle.Oracle
	cache  Cache
	cfg    Config
}

func NewEngine(o oracle.Oracle, cache Cache, cfg Config) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Engine{oracle: o, cache: cache, cfg: cfg}
}

// Evaluate produces the single decision for ectx. Retries are spent only on
// transport or contract failures, never on a valid response the caller merely
// dislikes.
func (e *Engine) Evaluate(ctx context.Context, ectx *model.EvaluationContext) *model.Decision {
	key := fmt.Sprintf("decision:%s:%s", ectx.CallerID, ectx.Hash())
	if e.cache != nil {
		if d, ok := e.cache.GetDecision(ctx, key); ok {
			logger.Debug("Decision cache hit",
				zap.String("caller", ectx.CallerID),
				zap.String("feature", ectx.Feature))
			return d
		}
	}

	req := &oracle.Request{
		CallerID:    ectx.CallerID,
		Feature:     ectx.Feature,
		Action:      ectx.Action,
		Parameters:  ectx.Parameters,
		Rules:       ectx.Rules,
		Environment: ectx.Environment,
	}

	var lastErr error
	backoff := e.cfg.Backoff
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return e.errorDecision(ctx.Err(), attempt-1)
			}
			backoff *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		resp, err := e.oracle.Evaluate(callCtx, req)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", arbiter_errors.ErrOracleTimeout, err)
			}
			lastErr = err
			logger.Warn("Oracle call failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.String("caller", ectx.CallerID))
			if ctx.Err() != nil {
				return e.errorDecision(ctx.Err(), attempt)
			}
			continue
		}

		d, err := validateResponse(resp)
		if err != nil {
			lastErr = err
			logger.Warn("Oracle response rejected",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.String("caller", ectx.CallerID))
			continue
		}

		d.RetryCount = attempt
		if e.cache != nil && d.Outcome != model.OutcomeError {
			e.cache.PutDecision(ctx, key, d)
		}
		return d
	}

	return e.errorDecision(lastErr, e.cfg.MaxRetries)
}

func (e *Engine) errorDecision(cause error, retries int) *model.Decision {
	reason := "oracle evaluation failed"
	if cause != nil {
		reason = fmt.Sprintf("oracle evaluation failed: %v", cause)
	}
	return &model.Decision{
		Outcome:    model.OutcomeError,
		Reason:     reason,
		RetryCount: retries,
	}
}

// validateResponse enforces the oracle contract strictly: an enumerated
// decision tag and a confidence score inside [0,1].
func validateResponse(resp *oracle.Response) (*model.Decision, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", arbiter_errors.ErrOracleSchema)
	}
	outcome := model.Outcome(resp.Decision)
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: unknown decision tag %q", arbiter_errors.ErrOracleSchema, resp.Decision)
	}
	if resp.ConfidenceScore < 0 || resp.ConfidenceScore > 1 {
		return nil, fmt.Errorf("%w: confidence score %f out of range", arbiter_errors.ErrOracleSchema, resp.ConfidenceScore)
	}
	return &model.Decision{
		Outcome:         outcome,
		Reason:          resp.Reason,
		RuleViolated:    resp.RuleViolated,
		ConfidenceScore: resp.ConfidenceScore,
	}, nil
}
