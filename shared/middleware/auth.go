package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	merchantIDKey = "merchantId"
	terminalIDKey = "terminalId"
)

// Claims identify the merchant operating a terminal.
type Claims struct {
	MerchantID string `json:"merchantId"`
	TerminalID string `json:"terminalId"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the HS256 bearer token issued to the terminal and
// stores the merchant identity in the gin context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || !token.Valid || claims.MerchantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(merchantIDKey, claims.MerchantID)
		c.Set(terminalIDKey, claims.TerminalID)
		c.Next()
	}
}

func GetMerchantID(c *gin.Context) (string, bool) {
	merchantID, exists := c.Get(merchantIDKey)
	if !exists {
		return "", false
	}
	id, ok := merchantID.(string)
	return id, ok
}

// SetMerchantID is used by tests and internal routes that authenticate by
// other means.
func SetMerchantID(c *gin.Context, merchantID string) {
	c.Set(merchantIDKey, merchantID)
}
