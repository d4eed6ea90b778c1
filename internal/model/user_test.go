package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Password(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("hunter22"))

	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.True(t, u.CheckPassword("hunter22"))
	assert.False(t, u.CheckPassword("hunter23"))
	assert.False(t, u.CheckPassword(""))
}

func TestUser_JSONHidesHash(t *testing.T) {
	u := User{ID: 1, Email: "a@example.com"}
	require.NoError(t, u.SetPassword("secret1"))

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), u.PasswordHash)
}
