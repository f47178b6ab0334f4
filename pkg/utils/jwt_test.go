package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	SetSecret("test-secret")
	userID := uuid.New()

	token, err := GenerateToken(userID, "alice", []string{"Learner", "Reviewer"}, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"Learner", "Reviewer"}, claims.Roles)
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	SetSecret("test-secret")
	expired, err := GenerateToken(uuid.New(), "bob", nil, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.Error(t, err)

	SetSecret("other-secret")
	foreign, err := GenerateToken(uuid.New(), "eve", nil, time.Hour)
	require.NoError(t, err)
	SetSecret("test-secret")
	_, err = ValidateToken(foreign)
	assert.Error(t, err)
}
