package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/utils"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// AuthRequired validates an HS256 bearer token and sets user context
func AuthRequired(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "authorization header required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c, "bearer token required")
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			utils.UnauthorizedResponse(c, "invalid token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c, "invalid user id in token")
			return
		}

		c.Set(utils.ContextUserID, userID)
		c.Set(utils.ContextUserType, claims.UserType)

		c.Next()
	}
}

// AdminRequired ensures the authenticated user is a platform admin
func AdminRequired(adminType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get(utils.ContextUserType)
		if !exists {
			utils.UnauthorizedResponse(c, "")
			return
		}

		if userTypeStr, ok := userType.(string); !ok || userTypeStr != adminType {
			utils.ForbiddenResponse(c)
			return
		}

		c.Next()
	}
}
