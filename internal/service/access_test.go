package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccess(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@email.com", true)
	owner := f.user(t, "owner@email.com", false)
	other := f.user(t, "other@email.com", false)

	t.Run("admin", func(t *testing.T) {
		u, err := RequireAdmin(f.db, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, u.ID)

		_, err = RequireAdmin(f.db, owner.ID)
		assertKind(t, KindForbidden, err)
	})

	t.Run("owner or admin", func(t *testing.T) {
		_, err := RequireOwnerOrAdmin(f.db, owner.ID, owner.ID)
		assert.NoError(t, err)

		_, err = RequireOwnerOrAdmin(f.db, admin.ID, owner.ID)
		assert.NoError(t, err)

		_, err = RequireOwnerOrAdmin(f.db, other.ID, owner.ID)
		assertKind(t, KindForbidden, err)
	})

	t.Run("unknown subject is an auth failure", func(t *testing.T) {
		_, err := RequireAdmin(f.db, 9999)
		assertKind(t, KindUnauthorized, err)

		_, err = RequireOwnerOrAdmin(f.db, 9999, 9999)
		assertKind(t, KindUnauthorized, err)
	})
}
