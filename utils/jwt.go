package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const AdminIDKey = contextKey("adminID")
const RequestIDKey = contextKey("requestID")

// GenerateAdminToken issues a short-lived HS256 access token for an admin.
func GenerateAdminToken(adminID int64, email string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"id":    adminID,
		"email": email,
		"role":  "admin",
		"exp":   now.Add(6 * time.Hour).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateAdminToken parses and validates an admin access token, returning
// the admin id from its claims.
func ValidateAdminToken(tokenString string) (int64, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return 0, errors.New("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return 0, errors.New("not an admin token")
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	return int64(id), nil
}
