package rbac_test

import (
	"net/http"
	"testing"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/rbac"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	e, err := rbac.New()
	require.NoError(t, err)

	cases := []struct {
		role, path, method string
		want               bool
	}{
		{"manager", "/admin/stats", http.MethodGet, true},
		{"manager", "/admin/request-logs", http.MethodGet, true},
		{"manager", "/admin/request-logs/daily", http.MethodGet, true},
		{"manager", "/admin/users", http.MethodGet, false},
		{"manager", "/admin/users/2/role", http.MethodPut, false},
		{"manager", "/admin/menus", http.MethodGet, false},
		{"admin", "/admin/stats", http.MethodGet, true},
		{"admin", "/admin/request-logs/daily", http.MethodGet, true},
		{"admin", "/admin/users", http.MethodGet, true},
		{"admin", "/admin/users/2/role", http.MethodPut, true},
		{"admin", "/admin/menus", http.MethodGet, true},
		{"admin", "/admin/users", http.MethodPatch, false},
		{"user", "/admin/stats", http.MethodGet, false},
		{"user", "/admin/request-logs", http.MethodGet, false},
		{"", "/admin/stats", http.MethodGet, false},
	}

	for _, c := range cases {
		got, err := e.Allowed(c.role, c.path, c.method)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "%s %s %s", c.role, c.method, c.path)
	}
}
