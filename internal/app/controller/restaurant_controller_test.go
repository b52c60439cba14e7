package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	"github.com/ikkim/tableqr-backend/internal/db"
	apperrors "github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/pkg/catalog"
	"github.com/ikkim/tableqr-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCatalog struct {
	restaurants []catalog.Restaurant
	err         error
}

func (s *stubCatalog) FetchRestaurants(_ context.Context) ([]catalog.Restaurant, error) {
	return s.restaurants, s.err
}

func setupRestaurantControllerTest(t *testing.T, cat service.RestaurantCatalog, claims *util.Claims) (*gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	ctrl := NewRestaurantController(service.NewRestaurantService(
		repository.NewRestaurantRepository(testDB),
		cat,
		2,
	))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("operator_claims", claims)
		c.Next()
	})
	router.GET("/restaurants", ctrl.ListRestaurants)
	router.POST("/restaurants/sync", ctrl.SyncRestaurants)
	router.GET("/restaurants/:restaurant_id", setRestaurantFromPath, ctrl.GetRestaurant)

	return router, testDB
}

func adminClaims() *util.Claims {
	return &util.Claims{OperatorID: 1, Role: util.RoleAdmin}
}

func TestRestaurantController_ListAndGet(t *testing.T) {
	claims := &util.Claims{OperatorID: 2, Role: util.RoleOperator}
	router, testDB := setupRestaurantControllerTest(t, nil, claims)

	mine := &model.Restaurant{Name: "Seoul Table", IsActive: true}
	require.NoError(t, testDB.Create(mine).Error)
	require.NoError(t, testDB.Create(&model.Restaurant{Name: "Harbor Noodle House", IsActive: true}).Error)
	claims.RestaurantIDs = []uint{mine.ID}

	w := getPath(router, "/restaurants")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Restaurants []model.Restaurant `json:"restaurants"`
		Count       int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, mine.ID, list.Restaurants[0].ID)

	w = getPath(router, "/restaurants/"+strconv.FormatUint(uint64(mine.ID), 10))
	require.Equal(t, http.StatusOK, w.Code)

	w = getPath(router, "/restaurants/9999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.RestaurantNotFound, decodeError(t, w).Error)
}

func TestRestaurantController_SyncRestaurants(t *testing.T) {
	cat := &stubCatalog{restaurants: []catalog.Restaurant{
		{ExternalID: "v-1", Name: "Seoul Table", Active: true},
		{ExternalID: "v-2", Name: "", Active: true},
	}}
	router, _ := setupRestaurantControllerTest(t, cat, adminClaims())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/restaurants/sync", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.SyncResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "v-2", result.Errors[0].ExternalID)

	w = getPath(router, "/restaurants")
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestRestaurantController_SyncRestaurants_Failures(t *testing.T) {
	tests := []struct {
		name       string
		catalog    service.RestaurantCatalog
		wantStatus int
		wantCode   string
	}{
		{"not configured", nil, http.StatusServiceUnavailable, apperrors.RestaurantSyncDisabled},
		{"vendor down", &stubCatalog{err: catalog.ErrUnavailable}, http.StatusBadGateway, apperrors.RestaurantCatalogFailed},
		{"unexpected", &stubCatalog{err: errors.New("boom")}, http.StatusInternalServerError, apperrors.InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupRestaurantControllerTest(t, tt.catalog, adminClaims())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/restaurants/sync", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}
