// api/engine/engine_test.go
package engine_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/arbiter/api/engine"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/oracle"
)

func TestMain(m *testing.M) {
	logger.InitLogger(os.TempDir())
	os.Exit(m.Run())
}

type memCache struct {
	mu   sync.Mutex
	data map[string]*model.Decision
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]*model.Decision)}
}

func (c *memCache) GetDecision(ctx context.Context, key string) (*model.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok
}

func (c *memCache) PutDecision(ctx context.Context, key string, d *model.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = d
}

func testContext() *model.EvaluationContext {
	return &model.EvaluationContext{
		CallerID:       "alice",
		Feature:        "ATTENDANCE",
		Action:         "CHECK-IN",
		Parameters:     map[string]interface{}{"TIME": "09:15"},
		RuleSetID:      "standard",
		RuleSetVersion: 1,
		Rules:          []string{"[ATTENDANCE] Users can [CHECK-IN] only between 06:00 and 10:00 at [TIME]"},
	}
}

func allowedResponse() *oracle.Response {
	return &oracle.Response{
		Decision:        "ALLOWED",
		Reason:          "within working hours",
		ConfidenceScore: 0.92,
	}
}

func TestEngineEvaluate(t *testing.T) {
	t.Run("Allowed", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{{Response: allowedResponse()}}}
		e := engine.NewEngine(stub, nil, engine.Config{MaxRetries: 2})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeAllowed, d.Outcome)
		assert.Equal(t, 0, d.RetryCount)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("DeniedIsNotRetried", func(t *testing.T) {
		violated := "[ATTENDANCE] Users can [CHECK-IN] only between 06:00 and 10:00 at [TIME]"
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{{
			Response: &oracle.Response{
				Decision:        "DENIED",
				Reason:          "outside working hours",
				RuleViolated:    &violated,
				ConfidenceScore: 0.88,
			},
		}}}
		e := engine.NewEngine(stub, nil, engine.Config{MaxRetries: 2})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeDenied, d.Outcome)
		require.NotNil(t, d.RuleViolated)
		assert.Equal(t, violated, *d.RuleViolated)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("TransportFailureRetriesThenRecovers", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{
			{Err: errors.New("connection reset")},
			{Response: allowedResponse()},
		}}
		e := engine.NewEngine(stub, nil, engine.Config{MaxRetries: 2, Backoff: time.Millisecond})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeAllowed, d.Outcome)
		assert.Equal(t, 1, d.RetryCount)
		assert.Equal(t, 2, stub.Calls())
	})

	t.Run("ExhaustedRetriesFailClosed", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{
			{Err: errors.New("connection reset")},
		}}
		e := engine.NewEngine(stub, nil, engine.Config{MaxRetries: 2, Backoff: time.Millisecond})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeError, d.Outcome)
		assert.Equal(t, 2, d.RetryCount)
		assert.Equal(t, 3, stub.Calls())
	})

	t.Run("UnknownDecisionTagIsSchemaFailure", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{{
			Response: &oracle.Response{Decision: "MAYBE", ConfidenceScore: 0.5},
		}}}
		e := engine.NewEngine(stub, nil, engine.Config{MaxRetries: 1, Backoff: time.Millisecond})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeError, d.Outcome)
		assert.Equal(t, 2, stub.Calls())
	})

	t.Run("ConfidenceOutOfRangeIsSchemaFailure", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{{
			Response: &oracle.Response{Decision: "ALLOWED", ConfidenceScore: 1.7},
		}}}
		e := engine.NewEngine(stub, nil, engine.Config{MaxRetries: 0})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeError, d.Outcome)
	})

	t.Run("TimeoutFailsClosed", func(t *testing.T) {
		stub := &oracle.StubOracle{
			Steps: []oracle.StubStep{{Response: allowedResponse()}},
			Delay: 200 * time.Millisecond,
		}
		e := engine.NewEngine(stub, nil, engine.Config{
			Timeout:    10 * time.Millisecond,
			MaxRetries: 0,
		})

		d := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeError, d.Outcome)
	})

	t.Run("CacheHitSkipsOracle", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{{Response: allowedResponse()}}}
		cache := newMemCache()
		e := engine.NewEngine(stub, cache, engine.Config{MaxRetries: 0})

		first := e.Evaluate(context.Background(), testContext())
		second := e.Evaluate(context.Background(), testContext())

		assert.Equal(t, first.Outcome, second.Outcome)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("ErrorDecisionIsNeverCached", func(t *testing.T) {
		stub := &oracle.StubOracle{Steps: []oracle.StubStep{
			{Err: errors.New("boom")},
			{Response: allowedResponse()},
		}}
		cache := newMemCache()
		e := engine.NewEngine(stub, cache, engine.Config{MaxRetries: 0, Backoff: time.Millisecond})

		first := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeError, first.Outcome)

		second := e.Evaluate(context.Background(), testContext())
		assert.Equal(t, model.OutcomeAllowed, second.Outcome)
	})
}
