package controller

import (
	"bytes"
	"encoding/json"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQRFeeControllerTest(t *testing.T) (*gin.Engine, *model.Restaurant) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	restaurant := &model.Restaurant{Name: "Seoul Table", IsActive: true}
	require.NoError(t, testDB.Create(restaurant).Error)

	ctrl := NewQRFeeController(service.NewQRFeeService(
		repository.NewQRFeeConfigRepository(testDB),
		repository.NewRestaurantRepository(testDB),
	))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	qrConfig := router.Group("/restaurants/:restaurant_id/qr-config", setRestaurantFromPath)
	qrConfig.GET("", ctrl.GetConfig)
	qrConfig.PUT("", ctrl.UpdateConfig)
	qrConfig.GET("/quote", ctrl.QuoteFee)

	return router, restaurant
}

func feePath(restaurantID uint, suffix string) string {
	return "/restaurants/" + strconv.FormatUint(uint64(restaurantID), 10) + "/qr-config" + suffix
}

func putFeeConfig(router *gin.Engine, restaurantID uint, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, feePath(restaurantID, ""), bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestQRFeeController_GetConfig_Default(t *testing.T) {
	router, restaurant := setupQRFeeControllerTest(t)

	w := getPath(router, feePath(restaurant.ID, ""))
	require.Equal(t, http.StatusOK, w.Code)

	var config model.QRFeeConfiguration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &config))
	assert.Equal(t, model.QRFeeTypeNone, config.FeeType)
	assert.True(t, config.IsActive)
	assert.Nil(t, config.FeeAmount)

	w = getPath(router, feePath(9999, ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQRFeeController_UpdateConfig_ThenGet(t *testing.T) {
	router, restaurant := setupQRFeeControllerTest(t)

	w := putFeeConfig(router, restaurant.ID, `{"feeType":"PERCENTAGE","feeAmount":5,"isActive":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = getPath(router, feePath(restaurant.ID, ""))
	require.Equal(t, http.StatusOK, w.Code)

	var config model.QRFeeConfiguration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &config))
	assert.Equal(t, model.QRFeeTypePercentage, config.FeeType)
	require.NotNil(t, config.FeeAmount)
	assert.Equal(t, 5.0, *config.FeeAmount)
	assert.True(t, config.IsActive)
}

func TestQRFeeController_UpdateConfig_Validation(t *testing.T) {
	router, restaurant := setupQRFeeControllerTest(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing fee type", `{"feeAmount":5}`, apperrors.ValidationInvalidInput},
		{"unknown fee type", `{"feeType":"tiered","feeAmount":5}`, apperrors.QRFeeInvalidType},
		{"amount required", `{"feeType":"fixed"}`, apperrors.QRFeeInvalidAmount},
		{"negative amount", `{"feeType":"fixed","feeAmount":-1}`, apperrors.QRFeeInvalidAmount},
		{"percentage over 100", `{"feeType":"percentage","feeAmount":120}`, apperrors.QRFeeInvalidAmount},
		{"malformed json", `{"feeType":`, apperrors.ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := putFeeConfig(router, restaurant.ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestQRFeeController_QuoteFee(t *testing.T) {
	router, restaurant := setupQRFeeControllerTest(t)

	w := putFeeConfig(router, restaurant.ID, `{"feeType":"fixed","feeAmount":1.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = getPath(router, feePath(restaurant.ID, "/quote?subtotal=20"))
	require.Equal(t, http.StatusOK, w.Code)

	var quote service.FeeQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.True(t, quote.Applied)
	assert.Equal(t, 1.5, quote.Surcharge)
	assert.Equal(t, 21.5, quote.Total)

	w = getPath(router, feePath(restaurant.ID, "/quote?subtotal=abc"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.QRFeeInvalidTotal, decodeError(t, w).Error)

	w = getPath(router, feePath(restaurant.ID, "/quote?subtotal=-5"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.QRFeeInvalidTotal, decodeError(t, w).Error)
}
