package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "examreg/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRecordID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRecordID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseRecordID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseRecordID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, RecordID(validUUID), id)
		assert.False(t, id.IsNil())
	})
}

func TestParseID_BoundaryInputs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE examinee_records;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseApplicationID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errAccount := ParseAccountID(valid)
		_, errApplication := ParseApplicationID(valid)
		_, errRecord := ParseRecordID(valid)
		require.NoError(t, errAccount)
		require.NoError(t, errApplication)
		require.NoError(t, errRecord)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errAccount := ParseAccountID(input)
			_, errApplication := ParseApplicationID(input)
			_, errRecord := ParseRecordID(input)
			require.Error(t, errAccount)
			require.Error(t, errApplication)
			require.Error(t, errRecord)
		})
	}
}

func TestIDTextEncoding(t *testing.T) {
	original := NewRecordID()

	b, err := original.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, original.String(), string(b))

	var decoded RecordID
	require.NoError(t, decoded.UnmarshalText(b))
	assert.Equal(t, original, decoded)

	var empty AccountID
	require.NoError(t, empty.UnmarshalText(nil))
	assert.True(t, empty.IsNil())

	var bad ApplicationID
	assert.Error(t, bad.UnmarshalText([]byte("nope")))
}
