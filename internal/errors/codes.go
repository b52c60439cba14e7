package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 클라이언트는 message 대신 이 코드로 분기한다

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"  // 토큰 없음
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED" // 토큰 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID" // 잘못된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden       = "AUTHZ_FORBIDDEN"        // 접근 권한 없음
	AuthzAdminOnly       = "AUTHZ_ADMIN_ONLY"       // 관리자만 가능
	AuthzRestaurantScope = "AUTHZ_RESTAURANT_SCOPE" // 담당 매장 아님

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"  // 범위 초과
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 매장 (RESTAURANT_) ====================
	RestaurantNotFound      = "RESTAURANT_NOT_FOUND"      // 매장 없음
	RestaurantSyncDisabled  = "RESTAURANT_SYNC_DISABLED"  // 카탈로그 미설정
	RestaurantSyncRunning   = "RESTAURANT_SYNC_RUNNING"   // 동기화 진행 중
	RestaurantCatalogFailed = "RESTAURANT_CATALOG_FAILED" // 카탈로그 조회 실패

	// ==================== QR 코드 (QR_) ====================
	QRCodeNotFound     = "QR_CODE_NOT_FOUND"       // QR 없음 (다른 매장 QR 포함)
	QRInvalidType      = "QR_INVALID_TYPE"         // TABLE/TAKEOUT/SPECIAL 외
	QRTableNumber      = "QR_TABLE_NUMBER"         // TABLE인데 테이블 번호 없음
	QRBadFormat        = "QR_BAD_FORMAT"           // svg/png 외
	QRRenderFailed     = "QR_RENDER_FAILED"        // 인코딩/변환 실패
	QRFeeInvalidType   = "QR_FEE_INVALID_TYPE"     // none/fixed/percentage 외
	QRFeeInvalidAmount = "QR_FEE_INVALID_AMOUNT"   // 금액 누락/범위 오류
	QRFeeInvalidTotal  = "QR_FEE_INVALID_SUBTOTAL" // 견적 금액 오류

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
