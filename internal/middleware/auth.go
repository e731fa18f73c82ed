package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"worklog/internal/config"
	"worklog/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	EmployeeIDKey = "employeeID"
	RoleKey       = "role"
)

const tokenIssuer = "worklog-api"

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT. Tokens are minted by the
// identity provider; this service only verifies them.
type JWTClaims struct {
	EmployeeID string      `json:"employee_id"`
	Role       models.Role `json:"role"`
	TokenType  string      `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an access token for emp. Used by tests and local
// tooling.
func GenerateAccessToken(emp *models.Employee) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		EmployeeID: emp.ID,
		Role:       emp.Role,
		TokenType:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   emp.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

func parseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

// AuthMiddleware verifies the bearer token and sets the employee id and role
// in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := parseToken(parts[1])
		if err != nil || claims.TokenType != "access" {
			unauthorized(c, "Invalid or expired token")
			return
		}
		if claims.EmployeeID == "" || !claims.Role.Valid() {
			unauthorized(c, "Token does not identify an employee")
			return
		}

		c.Set(EmployeeIDKey, claims.EmployeeID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}
