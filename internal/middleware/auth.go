package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued at login: subject is the user ID and
// Role is the immutable role claim ('teacher' or 'student').
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware() *AuthMiddleware {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireTeacher() gin.HandlerFunc {
	return m.requireRole(entity.RoleTeacher, "teacher access required")
}

func (m *AuthMiddleware) RequireStudent() gin.HandlerFunc {
	return m.requireRole(entity.RoleStudent, "student access required")
}

func (m *AuthMiddleware) requireRole(role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if current != role {
			c.JSON(http.StatusForbidden, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Next()
	}
}
