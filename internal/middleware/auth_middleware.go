package middleware

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/pkg/util"
)

// Context keys for operator information
const (
	OperatorIDKey     = "operator_id"
	OperatorEmailKey  = "operator_email"
	OperatorRoleKey   = "operator_role"
	OperatorClaimsKey = "operator_claims"
	RestaurantIDKey   = "restaurant_id"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the operator JWT (required).
// Browsers cannot set headers on WebSocket upgrades, so ?token= is accepted as a fallback.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "authorization header must be 'Bearer <token>'")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "token has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid token")
			}
			c.Abort()
			return
		}

		c.Set(OperatorIDKey, claims.OperatorID)
		c.Set(OperatorEmailKey, claims.Email)
		c.Set(OperatorRoleKey, claims.Role)
		c.Set(OperatorClaimsKey, claims)

		c.Next()
	}
}

// RequireRole checks if the operator has one of roles
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetOperatorRole(c)
		if !exists {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		operatorID, _ := GetOperatorID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"operator_id":    operatorID,
			"operator_role":  role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "insufficient permissions")
		c.Abort()
	}
}

// RequireRestaurantAccess parses the :restaurant_id path parameter and rejects operators
// whose token does not cover it. The parsed id is stored under RestaurantIDKey.
func (m *AuthMiddleware) RequireRestaurantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		restaurantID, err := strconv.ParseUint(c.Param("restaurant_id"), 10, 32)
		if err != nil || restaurantID == 0 {
			errors.BadRequest(c, errors.ValidationInvalidID, "invalid restaurant id")
			c.Abort()
			return
		}

		claims, ok := GetOperatorClaims(c)
		if !ok {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !claims.CanAccessRestaurant(uint(restaurantID)) {
			log.Warn("Restaurant outside operator scope", map[string]interface{}{
				"operator_id":   claims.OperatorID,
				"restaurant_id": restaurantID,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRestaurantScope, "restaurant is outside your scope")
			c.Abort()
			return
		}

		c.Set(RestaurantIDKey, uint(restaurantID))
		c.Next()
	}
}

// GetOperatorID extracts operator ID from context
func GetOperatorID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(OperatorIDKey)
	if !exists {
		return 0, false
	}
	return id.(uint), true
}

// GetOperatorRole extracts operator role from context
func GetOperatorRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(OperatorRoleKey)
	if !exists {
		return "", false
	}
	return role.(string), true
}

// GetOperatorClaims returns the validated token claims
func GetOperatorClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(OperatorClaimsKey)
	if !exists {
		return nil, false
	}
	return claims.(*util.Claims), true
}

// GetRestaurantID returns the id stored by RequireRestaurantAccess
func GetRestaurantID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(RestaurantIDKey)
	if !exists {
		return 0, false
	}
	return id.(uint), true
}

// RestaurantScope returns nil for admins (all restaurants) and the token's ids otherwise
func RestaurantScope(c *gin.Context) []uint {
	claims, ok := GetOperatorClaims(c)
	if !ok {
		return []uint{}
	}
	if claims.Role == util.RoleAdmin {
		return nil
	}
	if claims.RestaurantIDs == nil {
		return []uint{}
	}
	return claims.RestaurantIDs
}
