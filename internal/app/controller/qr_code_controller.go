package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	apperrors "github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/internal/middleware"
	"github.com/ikkim/tableqr-backend/pkg/qrcode"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QRCodeController struct {
	qrCodeService service.QRCodeService
}

func NewQRCodeController(qrCodeService service.QRCodeService) *QRCodeController {
	return &QRCodeController{qrCodeService: qrCodeService}
}

// QRCodeForm create/preview form fields (multipart, urlencoded or JSON)
type QRCodeForm struct {
	CustomURL       string `form:"customUrl" json:"customUrl"`
	MenuID          string `form:"menuId" json:"menuId"`
	PrimaryColor    string `form:"primaryColor" json:"primaryColor"`
	BackgroundColor string `form:"backgroundColor" json:"backgroundColor"`
	ErrorLevel      string `form:"errorLevel" json:"errorLevel"`
	Size            string `form:"size" json:"size"`
	Design          string `form:"design" json:"design"`
	CustomText      string `form:"customText" json:"customText"`
	HasLogo         bool   `form:"hasLogo" json:"hasLogo"`
	Type            string `form:"type" json:"type"`
	TableNumber     *int   `form:"tableNumber" json:"tableNumber"`
}

func (f QRCodeForm) input() service.QRCodeInput {
	return service.QRCodeInput{
		CustomURL:       f.CustomURL,
		MenuID:          f.MenuID,
		PrimaryColor:    f.PrimaryColor,
		BackgroundColor: f.BackgroundColor,
		ErrorLevel:      f.ErrorLevel,
		Size:            f.Size,
		Design:          f.Design,
		CustomText:      f.CustomText,
		HasLogo:         f.HasLogo,
		Type:            f.Type,
		TableNumber:     f.TableNumber,
	}
}

func (ctrl *QRCodeController) ListQRCodes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	restaurantID, _ := middleware.GetRestaurantID(c)

	qrs, err := ctrl.qrCodeService.ListByRestaurant(restaurantID)
	if err != nil {
		respondQRError(c, err, "list QR codes")
		return
	}

	log.Info("QR codes listed", map[string]interface{}{
		"restaurant_id": restaurantID,
		"count":         len(qrs),
	})

	c.JSON(http.StatusOK, gin.H{
		"qrCodes": qrs,
		"count":   len(qrs),
	})
}

// CreateQRCode QR 코드 생성
// @Summary QR 코드 생성
// @Tags QRCodes
// @Accept multipart/form-data
// @Produce json
// @Router /restaurants/{restaurant_id}/qr-codes [post]
func (ctrl *QRCodeController) CreateQRCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	restaurantID, _ := middleware.GetRestaurantID(c)

	var form QRCodeForm
	if err := c.ShouldBind(&form); err != nil {
		log.Warn("Invalid QR code form", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid QR code form")
		return
	}

	qr, err := ctrl.qrCodeService.Create(c.Request.Context(), restaurantID, form.input())
	if err != nil {
		respondQRError(c, err, "create QR code")
		return
	}

	c.JSON(http.StatusCreated, qr)
}

// PreviewQRCode 저장 없이 미리보기
// @Summary QR 코드 미리보기
// @Tags QRCodes
// @Accept multipart/form-data
// @Produce json
// @Router /restaurants/{restaurant_id}/qr-codes/preview [put]
func (ctrl *QRCodeController) PreviewQRCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var form QRCodeForm
	if err := c.ShouldBind(&form); err != nil {
		log.Warn("Invalid QR preview form", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid QR code form")
		return
	}

	preview, err := ctrl.qrCodeService.Preview(form.input())
	if err != nil {
		respondQRError(c, err, "preview QR code")
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (ctrl *QRCodeController) GetQRCode(c *gin.Context) {
	restaurantID, _ := middleware.GetRestaurantID(c)

	qr, err := ctrl.qrCodeService.Get(restaurantID, c.Param("id"))
	if err != nil {
		respondQRError(c, err, "get QR code")
		return
	}

	c.JSON(http.StatusOK, qr)
}

func (ctrl *QRCodeController) DeleteQRCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	restaurantID, _ := middleware.GetRestaurantID(c)
	id := c.Param("id")

	if err := ctrl.qrCodeService.Delete(restaurantID, id); err != nil {
		respondQRError(c, err, "delete QR code")
		return
	}

	log.Info("QR code deleted", map[string]interface{}{
		"restaurant_id": restaurantID,
		"qr_code_id":    id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "QR code deleted",
	})
}

// DownloadQRCode 저장된 QR을 svg/png로 내려주고 스캔 카운트 +1
// @Summary QR 코드 다운로드
// @Tags QRCodes
// @Produce image/svg+xml,image/png
// @Param format query string true "svg | png"
// @Router /restaurants/{restaurant_id}/qr-codes/{id}/download [get]
func (ctrl *QRCodeController) DownloadQRCode(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	restaurantID, _ := middleware.GetRestaurantID(c)

	artifact, qr, err := ctrl.qrCodeService.RecordDownload(c.Request.Context(), restaurantID, c.Param("id"), c.Query("format"))
	if err != nil {
		respondQRError(c, err, "download QR code")
		return
	}

	log.Info("QR code downloaded", map[string]interface{}{
		"qr_code_id": qr.ID,
		"format":     artifact.ContentType,
		"scan_count": qr.ScanCount,
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Header("X-Scan-Count", strconv.FormatInt(qr.ScanCount, 10))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

func (ctrl *QRCodeController) ExportQRCodes(c *gin.Context) {
	restaurantID, _ := middleware.GetRestaurantID(c)

	data, err := ctrl.qrCodeService.Export(restaurantID)
	if err != nil {
		respondQRError(c, err, "export QR codes")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="qr-codes-%d.xlsx"`, restaurantID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// respondQRError maps service errors onto the JSON error body.
// Render failures get a generic message and no partial image.
func respondQRError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrRestaurantNotFound):
		apperrors.NotFound(c, apperrors.RestaurantNotFound, "restaurant not found")
	case errors.Is(err, service.ErrQRCodeNotFound):
		apperrors.NotFound(c, apperrors.QRCodeNotFound, "QR code not found")
	case errors.Is(err, service.ErrInvalidCodeType):
		apperrors.BadRequest(c, apperrors.QRInvalidType, err.Error())
	case errors.Is(err, service.ErrTableNumberRequired):
		apperrors.BadRequest(c, apperrors.QRTableNumber, err.Error())
	case errors.Is(err, qrcode.ErrBadFormat):
		apperrors.BadRequest(c, apperrors.QRBadFormat, err.Error())
	case errors.Is(err, qrcode.ErrRenderFailed):
		log.Error("QR render failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.RenderFailed(c)
	default:
		log.Error("QR request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
