// api/registry/executor_test.go
package registry_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
	"github.com/dev-mohitbeniwal/arbiter/api/registry"
)

func TestMain(m *testing.M) {
	logger.InitLogger(os.TempDir())
	os.Exit(m.Run())
}

func allowed() *model.Decision {
	return &model.Decision{Outcome: model.OutcomeAllowed, Reason: "ok", ConfidenceScore: 0.9}
}

func checkInContext() *model.EvaluationContext {
	return &model.EvaluationContext{
		CallerID:   "alice",
		Feature:    "ATTENDANCE",
		Action:     "CHECK-IN",
		Parameters: map[string]interface{}{"TIME": "09:15"},
		RuleSetID:  "standard",
	}
}

func TestRegistry(t *testing.T) {
	t.Run("DuplicateRegistrationFails", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register("ATTENDANCE", "CHECK-IN", registry.Tool{Name: "a"}))
		assert.Error(t, reg.Register("ATTENDANCE", "CHECK-IN", registry.Tool{Name: "b"}))
	})

	t.Run("LookupMiss", func(t *testing.T) {
		reg := registry.NewRegistry()
		_, ok := reg.Lookup("EXPENSE", "SUBMIT")
		assert.False(t, ok)
	})
}

func TestExecutor(t *testing.T) {
	t.Run("RefusesNonAllowedDecision", func(t *testing.T) {
		reg := registry.NewRegistry()
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		denied := &model.Decision{Outcome: model.OutcomeDenied}
		result, err := ex.Execute(context.Background(), denied, checkInContext(), "corr-1")
		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("MissingTool", func(t *testing.T) {
		reg := registry.NewRegistry()
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		_, err := ex.Execute(context.Background(), allowed(), checkInContext(), "corr-1")
		assert.ErrorIs(t, err, arbiter_errors.ErrToolNotRegistered)
	})

	t.Run("SuccessfulExecution", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register("ATTENDANCE", "CHECK-IN", registry.Tool{
			Name: "attendance.check_in",
			Fn: func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
				return map[string]interface{}{"log_id": uint(1)}, nil
			},
		}))
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		result, err := ex.Execute(context.Background(), allowed(), checkInContext(), "corr-1")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "attendance.check_in", result.Tool)
		assert.Equal(t, "corr-1", result.CorrelationID)
	})

	t.Run("ToolFailureIsRecordedNotRetried", func(t *testing.T) {
		calls := 0
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register("ATTENDANCE", "CHECK-IN", registry.Tool{
			Name: "attendance.check_in",
			Fn: func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
				calls++
				return nil, errors.New("disk full")
			},
		}))
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		result, err := ex.Execute(context.Background(), allowed(), checkInContext(), "corr-1")
		assert.ErrorIs(t, err, arbiter_errors.ErrToolExecution)
		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "disk full")
		assert.Equal(t, 1, calls)
	})

	t.Run("ReplayOfNonIdempotentToolIsRejected", func(t *testing.T) {
		calls := 0
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register("ATTENDANCE", "CHECK-IN", registry.Tool{
			Name:       "attendance.check_in",
			Idempotent: false,
			Fn: func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
				calls++
				return map[string]interface{}{}, nil
			},
		}))
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		_, err := ex.Execute(context.Background(), allowed(), checkInContext(), "corr-1")
		require.NoError(t, err)

		_, err = ex.Execute(context.Background(), allowed(), checkInContext(), "corr-2")
		assert.ErrorIs(t, err, arbiter_errors.ErrDuplicateExecution)
		assert.Equal(t, 1, calls)
	})

	t.Run("IdempotentToolMayReExecute", func(t *testing.T) {
		calls := 0
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register("REPORT", "GENERATE", registry.Tool{
			Name:       "report.generate",
			Idempotent: true,
			Fn: func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
				calls++
				return map[string]interface{}{}, nil
			},
		}))
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		ectx := &model.EvaluationContext{CallerID: "alice", Feature: "REPORT", Action: "GENERATE"}
		_, err := ex.Execute(context.Background(), allowed(), ectx, "corr-1")
		require.NoError(t, err)
		_, err = ex.Execute(context.Background(), allowed(), ectx, "corr-2")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("DifferentContextIsNotAReplay", func(t *testing.T) {
		calls := 0
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register("ATTENDANCE", "CHECK-IN", registry.Tool{
			Name: "attendance.check_in",
			Fn: func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error) {
				calls++
				return map[string]interface{}{}, nil
			},
		}))
		ex := registry.NewExecutor(reg, registry.NewMemoryGuard())

		first := checkInContext()
		_, err := ex.Execute(context.Background(), allowed(), first, "corr-1")
		require.NoError(t, err)

		second := checkInContext()
		second.Parameters["TIME"] = "09:45"
		_, err = ex.Execute(context.Background(), allowed(), second, "corr-2")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}
