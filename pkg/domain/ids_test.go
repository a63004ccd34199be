package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tausepro/pkg/domain-errors"
)

func TestParseResourceID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseTenantID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects path separators", func(t *testing.T) {
		_, err := ParseAgentID("../admin")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects oversized ids", func(t *testing.T) {
		_, err := ParseModuleID(strings.Repeat("a", MaxResourceIDLength+1))
		require.Error(t, err)
	})

	t.Run("accepts backend style ids", func(t *testing.T) {
		id, err := ParseTenantID("tenant_colombia_1")
		require.NoError(t, err)
		assert.Equal(t, TenantID("tenant_colombia_1"), id)
		assert.False(t, id.IsNil())
	})
}

func TestParseSessionID(t *testing.T) {
	t.Run("rejects nil uuid", func(t *testing.T) {
		_, err := ParseSessionID(uuid.Nil.String())
		require.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseSessionID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("round trips minted ids", func(t *testing.T) {
		minted := NewSessionID()
		parsed, err := ParseSessionID(minted.String())
		require.NoError(t, err)
		assert.Equal(t, minted, parsed)
	})
}
