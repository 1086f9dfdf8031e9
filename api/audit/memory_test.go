// api/audit/memory_test.go
package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/arbiter/api/audit"
	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

func entry(correlationID, caller, feature string, ts time.Time) audit.Entry {
	return audit.Entry{
		Timestamp:     ts,
		CorrelationID: correlationID,
		Context: model.EvaluationContext{
			CallerID:   caller,
			Feature:    feature,
			Action:     "CHECK-IN",
			Parameters: map[string]interface{}{"TIME": "09:15"},
		},
		Decision: model.Decision{Outcome: model.OutcomeAllowed, Reason: "ok"},
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("AppendPreservesOrder", func(t *testing.T) {
		repo := audit.NewMemoryRepository()
		now := time.Now()
		require.NoError(t, repo.Append(ctx, entry("c-1", "alice", "ATTENDANCE", now)))
		require.NoError(t, repo.Append(ctx, entry("c-2", "bob", "EXPENSE", now.Add(time.Second))))

		entries := repo.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "c-1", entries[0].CorrelationID)
		assert.Equal(t, "c-2", entries[1].CorrelationID)
	})

	t.Run("AppendCopiesParameters", func(t *testing.T) {
		repo := audit.NewMemoryRepository()
		e := entry("c-1", "alice", "ATTENDANCE", time.Now())
		require.NoError(t, repo.Append(ctx, e))

		e.Context.Parameters["TIME"] = "23:59"
		assert.Equal(t, "09:15", repo.Entries()[0].Context.Parameters["TIME"])
	})

	t.Run("AttachFlagByCorrelationID", func(t *testing.T) {
		repo := audit.NewMemoryRepository()
		require.NoError(t, repo.Append(ctx, entry("c-1", "alice", "ATTENDANCE", time.Now())))
		require.NoError(t, repo.Append(ctx, entry("c-2", "alice", "ATTENDANCE", time.Now())))

		flag := &model.Flag{
			Verdict:       model.VerdictSuspect,
			Rationale:     "decision contradicts rule text",
			Confidence:    0.8,
			CorrelationID: "c-2",
			ReviewedAt:    time.Now(),
		}
		require.NoError(t, repo.AttachFlag(ctx, "c-2", flag))

		entries := repo.Entries()
		assert.Nil(t, entries[0].Flag)
		require.NotNil(t, entries[1].Flag)
		assert.Equal(t, model.VerdictSuspect, entries[1].Flag.Verdict)
	})

	t.Run("AttachFlagUnknownCorrelationID", func(t *testing.T) {
		repo := audit.NewMemoryRepository()
		err := repo.AttachFlag(ctx, "missing", &model.Flag{Verdict: model.VerdictSuspect})
		assert.Error(t, err)
	})

	t.Run("QueryFilters", func(t *testing.T) {
		repo := audit.NewMemoryRepository()
		base := time.Now()
		require.NoError(t, repo.Append(ctx, entry("c-1", "alice", "ATTENDANCE", base)))
		require.NoError(t, repo.Append(ctx, entry("c-2", "bob", "EXPENSE", base.Add(time.Minute))))
		require.NoError(t, repo.Append(ctx, entry("c-3", "alice", "EXPENSE", base.Add(2*time.Minute))))

		byUser, err := repo.Query(ctx, audit.Filter{User: "alice"})
		require.NoError(t, err)
		assert.Len(t, byUser, 2)

		byFeature, err := repo.Query(ctx, audit.Filter{Feature: "EXPENSE"})
		require.NoError(t, err)
		assert.Len(t, byFeature, 2)

		byWindow, err := repo.Query(ctx, audit.Filter{From: base.Add(30 * time.Second)})
		require.NoError(t, err)
		assert.Len(t, byWindow, 2)

		limited, err := repo.Query(ctx, audit.Filter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		// Newest first.
		assert.Equal(t, "c-3", limited[0].CorrelationID)
	})
}
