package middleware

import (
	"errors"
	"net/http"
	"strings"

	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CurrentUserKey is the gin context key holding the resolved *model.User
	CurrentUserKey = "currentUser"
	// JWTCookieName is the auth cookie set on login/signup
	JWTCookieName = "jwt"
)

// extractToken pulls the token from the Authorization header, falling
// back to the auth cookie
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(JWTCookieName); err == nil {
		return cookie
	}
	return ""
}

// resolveUser runs the full token-to-identity chain: verify the token,
// load the user it names, reject tokens issued before the user's last
// password change. The returned status separates auth failures (401)
// from infrastructure failures while loading the identity (500).
func resolveUser(c *gin.Context, jwtUtil *utils.JWTUtil, userRepo repository.UserRepository, tokenString string) (*model.User, string, int, error) {
	claims, err := jwtUtil.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "Your token has expired, please log in again", http.StatusUnauthorized, err
		}
		return nil, "Invalid token, please log in again", http.StatusUnauthorized, err
	}

	user, err := userRepo.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, "Something went very wrong!", http.StatusInternalServerError, err
	}
	if user == nil {
		return nil, "The user belonging to this token no longer exists", http.StatusUnauthorized, errors.New("user not found")
	}

	if claims.IssuedAt != nil && user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, "User recently changed the password, please log in again", http.StatusUnauthorized, errors.New("stale token")
	}

	return user, "", http.StatusOK, nil
}

// Protect creates a middleware that rejects requests without a valid,
// fresh token for an existing user
func Protect(jwtUtil *utils.JWTUtil, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" || tokenString == "loggedout" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in, please log in to get access"})
			return
		}

		user, message, status, err := resolveUser(c, jwtUtil, userRepo, tokenString)
		if err != nil {
			envelope := "fail"
			if status >= http.StatusInternalServerError {
				envelope = "error"
			}
			c.AbortWithStatusJSON(status, gin.H{"status": envelope, "message": message})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// IsLoggedIn resolves the current user for rendered pages but never
// rejects: any failure just leaves the request anonymous.
func IsLoggedIn(jwtUtil *utils.JWTUtil, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" || tokenString == "loggedout" {
			c.Next()
			return
		}

		if user, _, _, err := resolveUser(c, jwtUtil, userRepo, tokenString); err == nil {
			c.Set(CurrentUserKey, user)
		}
		c.Next()
	}
}

// RestrictTo creates a middleware limiting a route to the given roles.
// It assumes Protect already resolved the current user.
func RestrictTo(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "fail", "message": "User not resolved, ensure Protect runs first"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "fail", "message": "You do not have permission to perform this action"})
	}
}

// GetCurrentUser returns the user Protect or IsLoggedIn attached to the
// request, if any
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}
