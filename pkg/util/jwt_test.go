package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name          string
		operatorID    uint
		email         string
		role          string
		restaurantIDs []uint
	}{
		{
			name:          "Operator token",
			operatorID:    1,
			email:         "manager@example.com",
			role:          RoleOperator,
			restaurantIDs: []uint{3, 5},
		},
		{
			name:       "Admin token",
			operatorID: 2,
			email:      "admin@example.com",
			role:       RoleAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.operatorID, tt.email, tt.role, tt.restaurantIDs, testSecret, 15*time.Minute)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.operatorID, claims.OperatorID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.restaurantIDs, claims.RestaurantIDs)
			assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
		})
	}
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken(123, "manager@example.com", RoleOperator, []uint{1}, testSecret, 15*time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "Valid token", token: token, secret: testSecret},
		{name: "Invalid secret", token: token, secret: "wrong-secret", wantErr: ErrInvalidToken},
		{name: "Invalid token format", token: "invalid.token.format", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Empty token", token: "", secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(123), claims.OperatorID)
		})
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken(1, "manager@example.com", RoleOperator, nil, testSecret, -time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestClaims_CanAccessRestaurant(t *testing.T) {
	operator := &Claims{Role: RoleOperator, RestaurantIDs: []uint{3, 5}}
	assert.True(t, operator.CanAccessRestaurant(3))
	assert.False(t, operator.CanAccessRestaurant(4))

	admin := &Claims{Role: RoleAdmin}
	assert.True(t, admin.CanAccessRestaurant(4))
}
