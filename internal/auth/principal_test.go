package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("trainer")
	require.NoError(t, err)
	assert.Equal(t, RoleTrainer, r)
	assert.True(t, Principal{SubjectID: 1, Role: r}.IsTrainer())

	_, err = ParseRole("OWNER")
	assert.Error(t, err)
}
