package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("alice", "ws://127.0.0.1:4000/ws/mailbox")
	require.NoError(t, err)
	require.Equal(t, "alice", id.Name)
	require.Equal(t, Endpoint("ws://127.0.0.1:4000/ws/mailbox"), id.Address)
}

func TestNewIdentity_Rejects(t *testing.T) {
	cases := []struct {
		name string
		addr Endpoint
		err  error
	}{
		{"", "a", ErrNameEmpty},
		{strings.Repeat("x", MaxNameLen+1), "a", ErrNameTooLong},
		{"al ice", "a", ErrNameSpaces},
		{"alice", "", ErrEndpointEmpty},
	}
	for _, tc := range cases {
		_, err := NewIdentity(tc.name, tc.addr)
		require.ErrorIs(t, err, tc.err)
	}
}

func TestValidateName_GroupNames(t *testing.T) {
	require.NoError(t, ValidateName("team"))
	err := ValidateName("")
	require.ErrorIs(t, err, ErrNameEmpty)
	require.NotContains(t, err.Error(), "username")
	require.ErrorIs(t, ValidateName("my team"), ErrNameSpaces)
}

func TestRole(t *testing.T) {
	require.Equal(t, "ADMIN", RoleAdmin.String())
	require.Equal(t, "MUTE", RoleMute.String())
	require.Equal(t, "Role(9)", Role(9).String())
	require.True(t, RoleAdmin.Privileged())
	require.True(t, RoleCoAdmin.Privileged())
	require.False(t, RoleUser.Privileged())
	require.False(t, RoleMute.Privileged())
}
