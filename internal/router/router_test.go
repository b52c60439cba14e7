package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/config"
	"github.com/ikkim/tableqr-backend/internal/app/controller"
	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	"github.com/ikkim/tableqr-backend/internal/db"
	apperrors "github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/internal/middleware"
	"github.com/ikkim/tableqr-backend/internal/websocket"
	"github.com/ikkim/tableqr-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type routerFixture struct {
	engine        *gin.Engine
	mine          *model.Restaurant
	theirs        *model.Restaurant
	operatorToken string
	adminToken    string
}

func setupRouterTest(t *testing.T) *routerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	mine := &model.Restaurant{Name: "Seoul Table", IsActive: true}
	theirs := &model.Restaurant{Name: "Harbor Noodle House", IsActive: true}
	require.NoError(t, testDB.Create(mine).Error)
	require.NoError(t, testDB.Create(theirs).Error)

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://dash.example.com"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	restaurantRepo := repository.NewRestaurantRepository(testDB)
	qrCodeService := service.NewQRCodeService(
		repository.NewQRCodeRepository(testDB),
		restaurantRepo,
		service.QRSettings{BaseURL: "https://app.example.com", PNGDensityDPI: 300, RenderCacheTTL: time.Hour},
		nil,
		nil,
		hub,
	)

	r := NewRouter(
		controller.NewRestaurantController(service.NewRestaurantService(restaurantRepo, nil, 2)),
		controller.NewQRCodeController(qrCodeService),
		controller.NewQRFeeController(service.NewQRFeeService(repository.NewQRFeeConfigRepository(testDB), restaurantRepo)),
		controller.NewScanController(qrCodeService),
		controller.NewStreamController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewAuthMiddleware(testSecret),
		cfg,
	)

	operatorToken, err := util.GenerateToken(2, "operator@example.com", util.RoleOperator, []uint{mine.ID}, testSecret, time.Hour)
	require.NoError(t, err)
	adminToken, err := util.GenerateToken(1, "admin@example.com", util.RoleAdmin, nil, testSecret, time.Hour)
	require.NoError(t, err)

	return &routerFixture{
		engine:        r.Setup(),
		mine:          mine,
		theirs:        theirs,
		operatorToken: operatorToken,
		adminToken:    adminToken,
	}
}

func (f *routerFixture) request(method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func qrPath(restaurantID uint, suffix string) string {
	return fmt.Sprintf("/api/v1/restaurants/%d/qr-codes%s", restaurantID, suffix)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestRouter_Health(t *testing.T) {
	f := setupRouterTest(t)

	w := f.request(http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodOptions, qrPath(f.mine.ID, ""), nil)
	req.Header.Set("Origin", "https://dash.example.com")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestRouter_Authorization(t *testing.T) {
	f := setupRouterTest(t)

	w := f.request(http.MethodGet, "/api/v1/restaurants", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.request(http.MethodGet, qrPath(f.theirs.ID, ""), f.operatorToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.AuthzRestaurantScope, errorCode(t, w))

	w = f.request(http.MethodGet, qrPath(f.theirs.ID, ""), f.adminToken, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.request(http.MethodPost, "/api/v1/restaurants/sync", f.operatorToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.request(http.MethodPost, "/api/v1/restaurants/sync", f.adminToken, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apperrors.RestaurantSyncDisabled, errorCode(t, w))

	w = f.request(http.MethodGet, "/api/v1/restaurants", f.operatorToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestRouter_CreateDownloadAndScan(t *testing.T) {
	f := setupRouterTest(t)

	form := url.Values{
		"menuId":      {"m1"},
		"size":        {"large"},
		"errorLevel":  {"Q"},
		"type":        {"TABLE"},
		"tableNumber": {"7"},
	}
	w := f.request(http.MethodPost, qrPath(f.mine.ID, ""), f.operatorToken,
		bytes.NewBufferString(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var qr model.QRCode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qr))

	w = f.request(http.MethodGet, qrPath(f.mine.ID, "/"+qr.ID+"/download?format=svg"), f.operatorToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Scan-Count"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = f.request(http.MethodGet, qrPath(f.theirs.ID, "/"+qr.ID), f.adminToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.request(http.MethodGet, "/q/"+qr.ID, "", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/menu/m1", w.Header().Get("Location"))

	w = f.request(http.MethodGet, qrPath(f.mine.ID, "/"+qr.ID), f.operatorToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qr))
	assert.Equal(t, int64(2), qr.ScanCount)
}

func TestRouter_FeeConfiguration(t *testing.T) {
	f := setupRouterTest(t)
	path := fmt.Sprintf("/api/v1/restaurants/%d/qr-config", f.mine.ID)

	w := f.request(http.MethodPut, path, f.operatorToken,
		bytes.NewBufferString(`{"feeType":"percentage","feeAmount":5,"isActive":true}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.request(http.MethodGet, path, f.operatorToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var config model.QRFeeConfiguration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &config))
	assert.Equal(t, model.QRFeeTypePercentage, config.FeeType)
	require.NotNil(t, config.FeeAmount)
	assert.Equal(t, 5.0, *config.FeeAmount)
	assert.True(t, config.IsActive)

	w = f.request(http.MethodGet, path+"/quote?subtotal=100", f.operatorToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var quote service.FeeQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, 105.0, quote.Total)
}
