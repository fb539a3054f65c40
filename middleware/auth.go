package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseAdminToken validates an admin JWT and checks the role claim.
func ParseAdminToken(tokenString, secret string) error {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid || claims.Role != "admin" {
		return fmt.Errorf("invalid admin token")
	}
	return nil
}

// AdminAuth guards the mutating dashboard endpoints. With an empty secret the
// middleware is a pass-through (auth disabled for local development).
func AdminAuth(secret string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Fall back to query parameter (websocket upgrades and the
			// dashboard's fetch helpers both use it).
			if token := c.Query("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Format should be: Bearer <token>",
			})
			c.Abort()
			return
		}

		if err := ParseAdminToken(parts[1], secret); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid token",
				"message": "Token validation failed",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
