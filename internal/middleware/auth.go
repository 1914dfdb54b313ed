package middleware

import (
	"net/http"
	"os"
	"strings"

	"vendora-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

// AuthMiddleware extracts the retailer identity from a bearer token. Requests
// without a valid token pass through anonymously; scoped handlers reject them.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})

		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			retailerID, _ := claims["retailer_id"].(float64)
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			if retailerID > 0 {
				ctx := utils.SetRetailerContext(r.Context(), uint(retailerID), email, role)
				r = r.WithContext(ctx)
			}
		}

		next.ServeHTTP(w, r)
	})
}
