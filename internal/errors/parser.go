package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 클라이언트에 노출되는 메시지
}

// ParseError 저장소/드라이버 에러를 코드와 메시지로 변환.
// DB 내부 정보(제약조건 이름, SQL)는 메시지에 노출하지 않는다.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "internal server error",
		}
	}

	errLower := strings.ToLower(err.Error())

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL / SQLite 제약조건 위반
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower)
	}
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "a required field is missing"}
	}
	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "invalid input"}
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "upstream service unavailable, please retry later",
		}
	}

	// 4. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "external_id") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "restaurant with this external id already exists",
		}
	}
	if strings.Contains(errLower, "restaurant_id") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "fee configuration was modified concurrently, please retry",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "resource already exists",
	}
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "resource is still referenced",
		}
	}
	if strings.Contains(errLower, "restaurant_id") || strings.Contains(errLower, "fk_qr_codes_restaurant") {
		return ErrorInfo{
			Code:    RestaurantNotFound,
			Message: "restaurant not found",
		}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "referenced resource not found",
	}
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "qr"):
		return "QR code not found"
	case strings.Contains(contextLower, "restaurant"):
		return "restaurant not found"
	case strings.Contains(contextLower, "fee"):
		return "fee configuration not found"
	}
	return "resource not found"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	if context == "" {
		return "internal server error"
	}
	return "failed to " + context
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (헬퍼 함수)
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
