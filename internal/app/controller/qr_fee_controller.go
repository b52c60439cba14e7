package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	apperrors "github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/internal/middleware"
)

type QRFeeController struct {
	qrFeeService service.QRFeeService
}

func NewQRFeeController(qrFeeService service.QRFeeService) *QRFeeController {
	return &QRFeeController{qrFeeService: qrFeeService}
}

// GetConfig 수수료 설정 조회 (없으면 저장하지 않은 기본값)
func (ctrl *QRFeeController) GetConfig(c *gin.Context) {
	restaurantID, _ := middleware.GetRestaurantID(c)

	config, err := ctrl.qrFeeService.GetConfig(restaurantID)
	if err != nil {
		respondFeeError(c, err, "get fee configuration")
		return
	}

	c.JSON(http.StatusOK, config)
}

// UpdateConfig 수수료 설정 저장
func (ctrl *QRFeeController) UpdateConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	restaurantID, _ := middleware.GetRestaurantID(c)

	var req service.UpsertQRFeeConfigInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid fee configuration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "feeType is required")
		return
	}

	config, err := ctrl.qrFeeService.UpsertConfig(restaurantID, req)
	if err != nil {
		respondFeeError(c, err, "update fee configuration")
		return
	}

	c.JSON(http.StatusOK, config)
}

// QuoteFee 주문 금액에 대한 수수료 계산
func (ctrl *QRFeeController) QuoteFee(c *gin.Context) {
	restaurantID, _ := middleware.GetRestaurantID(c)

	subtotal, err := strconv.ParseFloat(c.Query("subtotal"), 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.QRFeeInvalidTotal, "subtotal must be a number")
		return
	}

	quote, err := ctrl.qrFeeService.QuoteFee(restaurantID, subtotal)
	if err != nil {
		respondFeeError(c, err, "quote fee")
		return
	}

	c.JSON(http.StatusOK, quote)
}

func respondFeeError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrRestaurantNotFound):
		apperrors.NotFound(c, apperrors.RestaurantNotFound, "restaurant not found")
	case errors.Is(err, service.ErrInvalidFeeType):
		apperrors.BadRequest(c, apperrors.QRFeeInvalidType, err.Error())
	case errors.Is(err, service.ErrFeeAmountRequired), errors.Is(err, service.ErrInvalidFeeAmount):
		apperrors.BadRequest(c, apperrors.QRFeeInvalidAmount, err.Error())
	case errors.Is(err, service.ErrInvalidFeeSubtotal):
		apperrors.BadRequest(c, apperrors.QRFeeInvalidTotal, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Fee request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
