package auth

import "github.com/gin-gonic/gin"

// Roles carried in the access token.
const (
	RoleAdmin      = "Admin"
	RoleCourtOwner = "CourtOwner"
	RoleUser       = "User"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// GetUserRole returns the authenticated user's role or empty string.
func GetUserRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}

// IsManager reports whether the caller may manage courts and other users' bookings.
func IsManager(c *gin.Context) bool {
	role := GetUserRole(c)
	return role == RoleAdmin || role == RoleCourtOwner
}
