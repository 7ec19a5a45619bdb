package middleware

import (
	"net/http"
	"strings"

	"shop-backend/models"
	"shop-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const GuestSessionHeader = "X-Guest-Session"

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid or missing token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "Access denied. Admin role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityMiddleware resolves either an authenticated user or an anonymous
// guest session for cart endpoints. When neither a token nor a guest
// session header is supplied, a fresh session id is minted and echoed back
// so the client can keep using it.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c); ok {
			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)
			c.Next()
			return
		}

		session := strings.TrimSpace(c.GetHeader(GuestSessionHeader))
		if session == "" {
			session = uuid.NewString()
		}
		c.Header(GuestSessionHeader, session)
		c.Set("guest_session", session)
		c.Next()
	}
}

func bearerClaims(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := utils.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// CartOwner extracts the resolved identity set by IdentityMiddleware.
func CartOwner(c *gin.Context) (models.CartOwner, bool) {
	if userID := c.GetInt("user_id"); userID > 0 {
		return models.UserOwner(userID), true
	}
	if session := c.GetString("guest_session"); session != "" {
		return models.GuestOwner(session), true
	}
	return models.CartOwner{}, false
}
