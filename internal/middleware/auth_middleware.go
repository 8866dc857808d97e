package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New(apperror.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New(apperror.CodeUnauthorized, "Token expired", http.StatusUnauthorized)
)

// AuthMiddleware verifies an HS256 bearer token and exposes its user_id,
// employee_id and company_id claims on the gin context. The employee_id is
// the actor recorded on payroll mutations.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			response.AbortWithError(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortWithError(c, ErrTokenExpired)
				return
			}
			response.AbortWithError(c, ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.AbortWithError(c, ErrInvalidToken)
			return
		}

		values := map[string]string{}
		for _, key := range []string{"user_id", "employee_id", "company_id"} {
			v, ok := claims[key].(string)
			if !ok || v == "" {
				response.AbortWithError(c, apperror.New(apperror.CodeUnauthorized, key+" not found in token", http.StatusUnauthorized))
				return
			}
			values[key] = v
		}

		for k, v := range values {
			c.Set(k, v)
		}

		c.Next()
	}
}
