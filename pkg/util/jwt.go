package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin    = "admin"    // all restaurants, catalog sync
	RoleOperator = "operator" // restaurants listed in the token only
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims identifies a back-office operator and the restaurants they manage
type Claims struct {
	OperatorID    uint   `json:"operator_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	RestaurantIDs []uint `json:"restaurant_ids,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessRestaurant reports whether the operator may manage restaurantID
func (c *Claims) CanAccessRestaurant(restaurantID uint) bool {
	if c.Role == RoleAdmin {
		return true
	}
	for _, id := range c.RestaurantIDs {
		if id == restaurantID {
			return true
		}
	}
	return false
}

// GenerateToken issues an HS256 access token
func GenerateToken(operatorID uint, email, role string, restaurantIDs []uint, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		OperatorID:    operatorID,
		Email:         email,
		Role:          role,
		RestaurantIDs: restaurantIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", operatorID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning ErrExpiredToken or ErrInvalidToken on failure
func ValidateToken(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
