package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to read records")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))
	assert.Equal(t, "failed to read records: connection reset", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
}

func TestCodeOf(t *testing.T) {
	t.Run("outermost domain error wins", func(t *testing.T) {
		inner := New(CodeNotFound, "record not found")
		outer := Wrap(inner, CodeConflict, "patch rejected")
		assert.Equal(t, CodeConflict, CodeOf(outer))
	})

	t.Run("found through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("save: %w", New(CodeValidation, "row 2: mobile is required"))
		assert.Equal(t, CodeValidation, CodeOf(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

type rowError struct{ row int }

func (e *rowError) Error() string    { return fmt.Sprintf("row %d: name is required", e.row) }
func (e *rowError) DomainCode() Code { return CodeValidation }

func TestCodedErrors(t *testing.T) {
	err := fmt.Errorf("submit: %w", &rowError{row: 2})

	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.True(t, HasCode(err, CodeValidation))
	assert.Equal(t, "row 2: name is required", Message(err))
}
