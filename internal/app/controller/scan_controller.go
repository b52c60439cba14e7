package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	apperrors "github.com/ikkim/tableqr-backend/internal/errors"
	"github.com/ikkim/tableqr-backend/internal/middleware"
)

// ScanController 공개 스캔 리다이렉트 (인증 없음)
type ScanController struct {
	qrCodeService service.QRCodeService
}

func NewScanController(qrCodeService service.QRCodeService) *ScanController {
	return &ScanController{qrCodeService: qrCodeService}
}

// Redirect GET /q/:id → 302 대상 URL, 스캔 카운트 +1
func (ctrl *ScanController) Redirect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	target, err := ctrl.qrCodeService.RecordScan(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQRCodeNotFound) {
			apperrors.NotFound(c, apperrors.QRCodeNotFound, "QR code not found")
			return
		}
		log.Error("Failed to record scan", err, map[string]interface{}{
			"qr_code_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}
	if target == "" {
		apperrors.InternalError(c, "QR code has no target URL")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, target)
}
