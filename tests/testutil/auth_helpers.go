package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/openmechanic/garage-manager/config"
	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/services"
)

// IssueTestTokens signs a real token pair for the user with the test secret
func IssueTestTokens(t *testing.T, cfg *config.Config, user *models.User) *services.TokenPair {
	t.Helper()

	pair, err := services.IssueTokenPair(cfg, user)
	require.NoError(t, err)
	return pair
}

// AuthHeader returns the Authorization header value for the user
func AuthHeader(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	return "Bearer " + IssueTestTokens(t, cfg, user).Access
}

// SetMockAuthContext marks a Gin context as authenticated for the user,
// the way the auth middleware would
func SetMockAuthContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}
