package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	middleware := NewAuthMiddleware(testJWTSecret)
	return router, middleware
}

func generateTestToken(t *testing.T, operatorID uint, role string, restaurantIDs []uint) string {
	token, err := util.GenerateToken(operatorID, "manager@example.com", role, restaurantIDs, testJWTSecret, 15*time.Minute)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorResponse {
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, 7, util.RoleOperator, []uint{1})

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		operatorID, _ := GetOperatorID(c)
		role, _ := GetOperatorRole(c)
		c.JSON(http.StatusOK, gin.H{"operator_id": operatorID, "role": role})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"operator_id":7,"role":"operator"}`, w.Body.String())
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, 7, util.RoleOperator, []uint{1})

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthMiddleware_Authenticate_Rejects(t *testing.T) {
	expired, err := util.GenerateToken(1, "manager@example.com", util.RoleOperator, nil, testJWTSecret, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "No token", header: "", wantCode: errors.AuthUnauthorized},
		{name: "Invalid format", header: "Token abc", wantCode: errors.AuthTokenInvalid},
		{name: "Invalid token", header: "Bearer not-a-jwt", wantCode: errors.AuthTokenInvalid},
		{name: "Expired token", header: "Bearer " + expired, wantCode: errors.AuthTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, authMiddleware := setupMiddlewareTest()
			router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "Admin passes", role: util.RoleAdmin, wantStatus: http.StatusOK},
		{name: "Operator forbidden", role: util.RoleOperator, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, authMiddleware := setupMiddlewareTest()
			router.POST("/sync", authMiddleware.Authenticate(), authMiddleware.RequireRole(util.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/sync", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, tt.role, nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireRestaurantAccess(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		scope      []uint
		path       string
		wantStatus int
	}{
		{name: "In scope", role: util.RoleOperator, scope: []uint{3}, path: "/restaurants/3", wantStatus: http.StatusOK},
		{name: "Out of scope", role: util.RoleOperator, scope: []uint{3}, path: "/restaurants/4", wantStatus: http.StatusForbidden},
		{name: "Admin any restaurant", role: util.RoleAdmin, path: "/restaurants/4", wantStatus: http.StatusOK},
		{name: "Invalid id", role: util.RoleAdmin, path: "/restaurants/abc", wantStatus: http.StatusBadRequest},
		{name: "Zero id", role: util.RoleAdmin, path: "/restaurants/0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, authMiddleware := setupMiddlewareTest()
			router.GET("/restaurants/:restaurant_id", authMiddleware.Authenticate(), authMiddleware.RequireRestaurantAccess(), func(c *gin.Context) {
				id, ok := GetRestaurantID(c)
				require.True(t, ok)
				c.JSON(http.StatusOK, gin.H{"restaurant_id": id})
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, tt.role, tt.scope))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRestaurantScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, []uint{}, RestaurantScope(c))

	c.Set(OperatorClaimsKey, &util.Claims{Role: util.RoleAdmin})
	assert.Nil(t, RestaurantScope(c))

	c.Set(OperatorClaimsKey, &util.Claims{Role: util.RoleOperator, RestaurantIDs: []uint{2, 9}})
	assert.Equal(t, []uint{2, 9}, RestaurantScope(c))
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router, _ := setupMiddlewareTest()
	router.Use(LoggingMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Body.String(), 36)
}
