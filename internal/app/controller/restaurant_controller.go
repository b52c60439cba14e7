package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	apperrors "github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/internal/middleware"
	"github.com/ikkim/tableqr-backend/pkg/catalog"
)

type RestaurantController struct {
	restaurantService service.RestaurantService
}

func NewRestaurantController(restaurantService service.RestaurantService) *RestaurantController {
	return &RestaurantController{restaurantService: restaurantService}
}

// ListRestaurants 토큰 범위 안의 매장 목록 (admin은 전체)
func (ctrl *RestaurantController) ListRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	restaurants, err := ctrl.restaurantService.List(middleware.RestaurantScope(c))
	if err != nil {
		log.Error("Failed to list restaurants", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list restaurants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}

func (ctrl *RestaurantController) GetRestaurant(c *gin.Context) {
	restaurantID, _ := middleware.GetRestaurantID(c)

	restaurant, err := ctrl.restaurantService.Get(restaurantID)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "restaurant not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get restaurant")
		return
	}

	c.JSON(http.StatusOK, restaurant)
}

// SyncRestaurants 외부 카탈로그 즉시 동기화 (admin)
func (ctrl *RestaurantController) SyncRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.restaurantService.SyncCatalog(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCatalogNotConfigured):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.RestaurantSyncDisabled, err.Error())
		case errors.Is(err, service.ErrCatalogSyncInProgress):
			apperrors.Conflict(c, apperrors.RestaurantSyncRunning, err.Error())
		case errors.Is(err, catalog.ErrUnavailable):
			log.Error("Restaurant catalog unavailable", err, nil)
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.RestaurantCatalogFailed, "restaurant catalog unavailable")
		default:
			log.Error("Restaurant sync failed", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "sync restaurants")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
