package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "examreg/pkg/domain-errors"
)

// recordingTx applies fn and reports whether it asked for a rollback.
type recordingTx struct {
	rolledBack bool
}

func (r *recordingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	r.rolledBack = err != nil
	return err
}

func TestApplyBatch(t *testing.T) {
	ctx := context.Background()
	ids := []string{"a", "b", "c", "d", "e"}

	t.Run("all rows applied", func(t *testing.T) {
		tx := &recordingTx{}
		committed := false
		results, err := ApplyBatch(ctx, tx, ids,
			func(context.Context, int) error { return nil },
			func(context.Context) error { committed = true; return nil },
		)
		require.NoError(t, err)
		assert.True(t, committed)
		assert.False(t, tx.rolledBack)
		for _, r := range results {
			assert.Equal(t, StatusUpdated, r.Status)
		}
	})

	t.Run("one rejected row rolls back the batch", func(t *testing.T) {
		tx := &recordingTx{}
		committed := false
		results, err := ApplyBatch(ctx, tx, ids,
			func(_ context.Context, i int) error {
				if i == 3 {
					return dErrors.New(dErrors.CodeNotFound, "record not found")
				}
				return nil
			},
			func(context.Context) error { committed = true; return nil },
		)
		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, 3, rejected.Index)
		assert.Equal(t, "d", rejected.ID)
		assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
		assert.True(t, tx.rolledBack)
		assert.False(t, committed)
		require.Len(t, results, 5)
		assert.Equal(t, StatusRejected, results[3].Status)
		assert.Equal(t, "not_found", results[3].Code)
		assert.Equal(t, StatusRolledBack, results[0].Status)
		assert.Equal(t, results, rejected.Results)
	})

	t.Run("infrastructure errors abort", func(t *testing.T) {
		boom := errors.New("connection reset")
		results, err := ApplyBatch(ctx, &recordingTx{}, ids,
			func(_ context.Context, i int) error {
				if i == 1 {
					return boom
				}
				return nil
			}, nil)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, results)
	})
}
