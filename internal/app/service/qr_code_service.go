package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/pkg/logger"
	"github.com/ikkim/tableqr-backend/pkg/qrcode"
	"gorm.io/gorm"
)

var (
	ErrQRCodeNotFound      = errors.New("QR code not found")
	ErrInvalidCodeType     = errors.New("invalid QR code type: must be TABLE, TAKEOUT or SPECIAL")
	ErrTableNumberRequired = errors.New("table number is required for TABLE codes")
)

const (
	scanSourceDownload = "download"
	scanSourceRedirect = "redirect"
)

// ArtifactStore 렌더링 결과를 외부 스토리지에 보관 (S3)
type ArtifactStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// RenderCache 다운로드 PNG 캐시 (Redis)
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// ScanPublisher 스캔 이벤트를 매장 대시보드로 전달 (WebSocket)
type ScanPublisher interface {
	PublishToRestaurant(restaurantID uint, message interface{}) error
}

// QRSettings QR 생성 관련 설정
type QRSettings struct {
	BaseURL        string
	PNGDensityDPI  int
	RenderCacheTTL time.Duration
}

// QRCodeInput 생성/미리보기 폼 입력
type QRCodeInput struct {
	CustomURL       string
	MenuID          string
	PrimaryColor    string
	BackgroundColor string
	ErrorLevel      string
	Size            string
	Design          string
	CustomText      string
	HasLogo         bool
	Type            string
	TableNumber     *int
}

func (in QRCodeInput) style() qrcode.Style {
	return qrcode.Style{
		Design:          in.Design,
		PrimaryColor:    in.PrimaryColor,
		BackgroundColor: in.BackgroundColor,
		Size:            in.Size,
		ErrorCorrection: in.ErrorLevel,
		HasLogo:         in.HasLogo,
		CustomText:      in.CustomText,
	}.Normalized()
}

// QRPreview 저장하지 않는 미리보기 결과
type QRPreview struct {
	SVGString  string `json:"svgString"`
	SVGDataURL string `json:"svgDataUrl"`
	PNGDataURL string `json:"pngDataUrl"`
}

// QRArtifact 다운로드 응답 본문
type QRArtifact struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ScanEvent 대시보드로 푸시되는 스캔 이벤트
type ScanEvent struct {
	Type         string `json:"type"`
	QRCodeID     string `json:"qr_code_id"`
	RestaurantID uint   `json:"restaurant_id"`
	ScanCount    int64  `json:"scan_count"`
	Source       string `json:"source"`
}

// QRCodeService QR 코드 서비스 인터페이스
type QRCodeService interface {
	Create(ctx context.Context, restaurantID uint, input QRCodeInput) (*model.QRCode, error)
	Preview(input QRCodeInput) (*QRPreview, error)
	ListByRestaurant(restaurantID uint) ([]model.QRCode, error)
	Get(restaurantID uint, id string) (*model.QRCode, error)
	Delete(restaurantID uint, id string) error
	RecordDownload(ctx context.Context, restaurantID uint, id, format string) (*QRArtifact, *model.QRCode, error)
	RecordScan(ctx context.Context, id string) (string, error)
	Export(restaurantID uint) ([]byte, error)
}

type qrCodeService struct {
	qrRepo         repository.QRCodeRepository
	restaurantRepo repository.RestaurantRepository
	settings       QRSettings
	store          ArtifactStore
	cache          RenderCache
	publisher      ScanPublisher
}

// NewQRCodeService QR 코드 서비스 생성. store, cache, publisher는 nil 허용
func NewQRCodeService(
	qrRepo repository.QRCodeRepository,
	restaurantRepo repository.RestaurantRepository,
	settings QRSettings,
	store ArtifactStore,
	cache RenderCache,
	publisher ScanPublisher,
) QRCodeService {
	return &qrCodeService{
		qrRepo:         qrRepo,
		restaurantRepo: restaurantRepo,
		settings:       settings,
		store:          store,
		cache:          cache,
		publisher:      publisher,
	}
}

// Create 대상 URL 결정 → SVG 인코딩 → scanCount 0으로 저장
func (s *qrCodeService) Create(ctx context.Context, restaurantID uint, input QRCodeInput) (*model.QRCode, error) {
	if err := ensureRestaurant(s.restaurantRepo, restaurantID); err != nil {
		return nil, err
	}

	codeType := model.QRCodeType(strings.ToUpper(strings.TrimSpace(input.Type)))
	if !codeType.IsValid() {
		return nil, ErrInvalidCodeType
	}

	tableNumber := input.TableNumber
	if codeType == model.QRCodeTypeTable {
		if tableNumber == nil || *tableNumber <= 0 {
			return nil, ErrTableNumberRequired
		}
	} else {
		tableNumber = nil
	}

	target := qrcode.ResolveTarget(qrcode.TargetInput{
		CustomURL: input.CustomURL,
		MenuID:    input.MenuID,
		BaseURL:   s.settings.BaseURL,
	})
	style := input.style()

	svg, err := qrcode.SVG(target.URL, style)
	if err != nil {
		return nil, err
	}

	qrURL := target.URL
	qr := &model.QRCode{
		RestaurantID: restaurantID,
		TargetKind:   model.QRTargetKind(target.Kind),
		TargetRef:    target.Ref,
		Style:        toModelStyle(style),
		SVG:          svg,
		QRURL:        &qrURL,
		CodeType:     codeType,
		TableNumber:  tableNumber,
	}
	if err := s.qrRepo.Create(qr); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}

	s.publishAsset(ctx, qr)

	logger.Info("QR code created", map[string]interface{}{
		"qr_code_id":    qr.ID,
		"restaurant_id": restaurantID,
		"target_kind":   qr.TargetKind,
		"code_type":     qr.CodeType,
		"size":          qr.Style.Size,
	})
	return qr, nil
}

// publishAsset mirrors the SVG to object storage; failures only degrade assetUrl
func (s *qrCodeService) publishAsset(ctx context.Context, qr *model.QRCode) {
	if s.store == nil {
		return
	}
	key := fmt.Sprintf("qr-codes/%d/%s.svg", qr.RestaurantID, qr.ID)
	url, err := s.store.Upload(ctx, key, qrcode.FormatSVG.ContentType(), []byte(qr.SVG))
	if err != nil {
		logger.Warn("Failed to upload QR artifact", map[string]interface{}{
			"qr_code_id": qr.ID,
			"key":        key,
			"error":      err.Error(),
		})
		return
	}
	if err := s.qrRepo.UpdateAssetURL(qr.ID, url); err != nil {
		logger.Warn("Failed to store QR asset URL", map[string]interface{}{
			"qr_code_id": qr.ID,
			"error":      err.Error(),
		})
		return
	}
	qr.AssetURL = url
}

// Preview 저장 없이 SVG와 PNG를 함께 렌더링
func (s *qrCodeService) Preview(input QRCodeInput) (*QRPreview, error) {
	target := qrcode.ResolveTarget(qrcode.TargetInput{
		CustomURL: input.CustomURL,
		MenuID:    input.MenuID,
		BaseURL:   s.settings.BaseURL,
	})
	style := input.style()

	svg, err := qrcode.SVG(target.URL, style)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.PNG(target.URL, style)
	if err != nil {
		return nil, err
	}

	return &QRPreview{
		SVGString:  svg,
		SVGDataURL: qrcode.DataURL(qrcode.FormatSVG.ContentType(), []byte(svg)),
		PNGDataURL: qrcode.DataURL(qrcode.FormatPNG.ContentType(), png),
	}, nil
}

// ListByRestaurant 매장의 QR 코드 목록 (최신순)
func (s *qrCodeService) ListByRestaurant(restaurantID uint) ([]model.QRCode, error) {
	if err := ensureRestaurant(s.restaurantRepo, restaurantID); err != nil {
		return nil, err
	}
	return s.qrRepo.FindByRestaurant(restaurantID)
}

// Get 매장 범위 단건 조회 (카운터 변화 없음)
func (s *qrCodeService) Get(restaurantID uint, id string) (*model.QRCode, error) {
	qr, err := s.qrRepo.FindByRestaurantAndID(restaurantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQRCodeNotFound
	}
	return qr, err
}

func (s *qrCodeService) Delete(restaurantID uint, id string) error {
	deleted, err := s.qrRepo.Delete(restaurantID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrQRCodeNotFound
	}
	return nil
}

// RecordDownload 매장 범위 조회 → 형식 검증 → 렌더링 → 스캔 카운트 +1.
// 잘못된 형식이나 렌더링 실패는 카운트하지 않는다.
func (s *qrCodeService) RecordDownload(ctx context.Context, restaurantID uint, id, format string) (*QRArtifact, *model.QRCode, error) {
	qr, err := s.Get(restaurantID, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := qrcode.ParseFormat(format)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.render(ctx, qr, f)
	if err != nil {
		logger.Error("Failed to render QR code", err, map[string]interface{}{
			"qr_code_id": qr.ID,
			"format":     f,
		})
		return nil, nil, err
	}

	if err := s.countScan(qr, scanSourceDownload); err != nil {
		return nil, nil, err
	}

	return &QRArtifact{
		Data:        data,
		ContentType: f.ContentType(),
		Filename:    fmt.Sprintf("qr-%s.%s", qr.ID, f.Extension()),
	}, qr, nil
}

// RecordScan 공개 스캔 경로: 카운트 +1 후 리다이렉트할 URL 반환
func (s *qrCodeService) RecordScan(ctx context.Context, id string) (string, error) {
	qr, err := s.qrRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrQRCodeNotFound
	}
	if err != nil {
		return "", err
	}

	if err := s.countScan(qr, scanSourceRedirect); err != nil {
		return "", err
	}
	return s.targetURL(qr), nil
}

func (s *qrCodeService) countScan(qr *model.QRCode, source string) error {
	count, err := s.qrRepo.IncrementScanCount(qr.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQRCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to increment scan count: %w", err)
	}
	qr.ScanCount = count

	if s.publisher != nil {
		event := ScanEvent{
			Type:         "qr_scan",
			QRCodeID:     qr.ID,
			RestaurantID: qr.RestaurantID,
			ScanCount:    count,
			Source:       source,
		}
		if err := s.publisher.PublishToRestaurant(qr.RestaurantID, event); err != nil {
			logger.Warn("Failed to publish scan event", map[string]interface{}{
				"qr_code_id": qr.ID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// targetURL prefers the cached URL and re-resolves legacy rows from the stored target
func (s *qrCodeService) targetURL(qr *model.QRCode) string {
	if qr.QRURL != nil && *qr.QRURL != "" {
		return *qr.QRURL
	}
	in := qrcode.TargetInput{BaseURL: s.settings.BaseURL}
	switch qr.TargetKind {
	case model.QRTargetCustomURL:
		in.CustomURL = qr.TargetRef
	case model.QRTargetMenu:
		in.MenuID = qr.TargetRef
	}
	return qrcode.ResolveTarget(in).URL
}

// render PNG는 URL이 남아 있으면 새로 인코딩, 없으면 저장된 SVG를 고해상도로 변환
func (s *qrCodeService) render(ctx context.Context, qr *model.QRCode, f qrcode.Format) ([]byte, error) {
	if f == qrcode.FormatSVG {
		return []byte(qr.SVG), nil
	}

	cacheKey := "qr:png:" + qr.ID
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			return data, nil
		} else if err != nil {
			logger.Warn("Render cache read failed", map[string]interface{}{
				"key":   cacheKey,
				"error": err.Error(),
			})
		}
	}

	style := fromModelStyle(qr.Style)
	var (
		data []byte
		err  error
	)
	if qr.QRURL != nil && *qr.QRURL != "" {
		data, err = qrcode.PNG(*qr.QRURL, style)
	} else {
		data, err = qrcode.SVGToPNG(qr.SVG, style, s.settings.PNGDensityDPI)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.settings.RenderCacheTTL); err != nil {
			logger.Warn("Render cache write failed", map[string]interface{}{
				"key":   cacheKey,
				"error": err.Error(),
			})
		}
	}
	return data, nil
}

func toModelStyle(s qrcode.Style) model.QRStyle {
	return model.QRStyle{
		Design:               s.Design,
		PrimaryColor:         s.PrimaryColor,
		BackgroundColor:      s.BackgroundColor,
		Size:                 s.Size,
		ErrorCorrectionLevel: s.ErrorCorrection,
		HasLogo:              s.HasLogo,
		CustomText:           s.CustomText,
	}
}

func fromModelStyle(s model.QRStyle) qrcode.Style {
	return qrcode.Style{
		Design:          s.Design,
		PrimaryColor:    s.PrimaryColor,
		BackgroundColor: s.BackgroundColor,
		Size:            s.Size,
		ErrorCorrection: s.ErrorCorrectionLevel,
		HasLogo:         s.HasLogo,
		CustomText:      s.CustomText,
	}
}
