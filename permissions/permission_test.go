package permissions_test

import (
	"net/http"
	"testing"

	"pms/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)
	require.NotEmpty(t, data.Endpoints)

	roles := []string{permissions.RoleAdmin, permissions.RoleFrontOffice, permissions.RoleReservations}

	for _, endpoint := range data.Endpoints {
		assert.NotEmpty(t, endpoint.Method, endpoint.Path)

		if endpoint.Skip {
			continue
		}

		assert.NotEmpty(t, endpoint.Permissions, "%s %s has no roles", endpoint.Method, endpoint.Path)

		for _, role := range endpoint.Permissions {
			assert.Contains(t, roles, role, "%s %s", endpoint.Method, endpoint.Path)
		}

		assert.True(t, endpoint.Allows(permissions.RoleAdmin), "admin locked out of %s %s", endpoint.Method, endpoint.Path)
	}
}

func TestFindPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	t.Run("trailing slash is ignored", func(t *testing.T) {
		assert.Equal(t,
			data.FindPermissions("/v1/rooms/", http.MethodPost),
			data.FindPermissions("/v1/rooms", http.MethodPost),
		)
	})

	t.Run("confirm is limited to reservations", func(t *testing.T) {
		permission := data.FindPermissions("/v1/group-bookings/{id}/confirm", http.MethodPost)

		assert.True(t, permission.Allows(permissions.RoleReservations))
		assert.False(t, permission.Allows(permissions.RoleFrontOffice))
	})

	t.Run("health skips auth", func(t *testing.T) {
		assert.True(t, data.FindPermissions("/health", http.MethodGet).Skip)
	})

	t.Run("unknown route", func(t *testing.T) {
		permission := data.FindPermissions("/v1/unknown", http.MethodGet)

		assert.Empty(t, permission.Path)
		assert.True(t, permission.Allows("anyone"))
	})
}
