package permissions_test

import (
	"testing"
	"traveltrust/permissions"
	"traveltrust/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	table, err := permissions.Get()
	require.NoError(t, err)

	route, ok := table.Lookup("POST", "/v1/disputes/{id}/resolve")
	require.True(t, ok)
	assert.True(t, route.Allows(constant.RoleArbitrator))
	assert.False(t, route.Allows(constant.RoleUser))

	route, ok = table.Lookup("GET", "/health")
	require.True(t, ok)
	assert.True(t, route.Public)

	_, ok = table.Lookup("DELETE", "/health")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
		wantLen int
	}{
		{
			name:    "valid",
			data:    `{"endpoints":[{"path":"/a","method":"get","public":true},{"path":"/a","method":"POST","roles":["owner"]}]}`,
			wantLen: 2,
		},
		{name: "malformed", data: `{`, wantErr: "decode permissions"},
		{name: "relative path", data: `{"endpoints":[{"path":"a","method":"GET"}]}`, wantErr: "must start with /"},
		{name: "unknown method", data: `{"endpoints":[{"path":"/a","method":"TRACE"}]}`, wantErr: "unknown method"},
		{name: "unknown role", data: `{"endpoints":[{"path":"/a","method":"GET","roles":["admin"]}]}`, wantErr: "unknown role"},
		{name: "duplicate", data: `{"endpoints":[{"path":"/a","method":"GET"},{"path":"/a","method":"get"}]}`, wantErr: "declared twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := permissions.Parse([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, table.Len())
		})
	}
}

func TestRouteAllows(t *testing.T) {
	open := permissions.Route{}
	owner := permissions.Route{Roles: []string{constant.RoleOwner}}

	assert.True(t, open.Allows(constant.RoleUser))
	assert.True(t, owner.Allows(constant.RoleOwner))
	assert.False(t, owner.Allows(constant.RoleUser))
	assert.False(t, owner.Allows(""))

	var table *permissions.Table
	_, ok := table.Lookup("GET", "/")
	assert.False(t, ok)
}
