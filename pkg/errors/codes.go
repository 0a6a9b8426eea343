package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are namespaced by module: "<MODULE>_<NNN>".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeMessagingError     ErrorCode = "COMMON_015"
	ErrCodeStorageError       ErrorCode = "COMMON_016"
)

// Aliases used by call sites that predate the module-scoped names.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// Family Module Error Codes
const (
	ErrCodeFamilyNotFound      ErrorCode = "FAM_001"
	ErrCodeFamilyInvalid       ErrorCode = "FAM_002"
	ErrCodeFamilySetUnresolved ErrorCode = "FAM_003"
)

// Member Module Error Codes
const (
	ErrCodeMemberNotFound ErrorCode = "MEM_001"
	ErrCodeMemberInvalid  ErrorCode = "MEM_002"
)

// Visit Module Error Codes
const (
	ErrCodeVisitInvalid        ErrorCode = "VIS_001"
	ErrCodeVisitPayloadInvalid ErrorCode = "VIS_002"
	ErrCodeVisitPublishFailed  ErrorCode = "VIS_003"
)

// Assessment Form Module Error Codes
const (
	ErrCodeFormNotFound        ErrorCode = "FORM_001"
	ErrCodeInstrumentUnknown   ErrorCode = "FORM_002"
	ErrCodeSessionNotFound     ErrorCode = "FORM_003"
	ErrCodeSessionBusy         ErrorCode = "FORM_004"
	ErrCodeSessionFormMismatch ErrorCode = "FORM_005"
)

// Report Module Error Codes
const (
	ErrCodeReportGenerationFailed ErrorCode = "RPT_001"
	ErrCodeReportArchiveFailed    ErrorCode = "RPT_002"
	ErrCodeReportArchiveDisabled  ErrorCode = "RPT_003"
)

// ErrorCodeHTTPStatus maps codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodeFamilyNotFound:      http.StatusNotFound,
	ErrCodeFamilyInvalid:       http.StatusBadRequest,
	ErrCodeFamilySetUnresolved: http.StatusBadGateway,

	ErrCodeMemberNotFound: http.StatusNotFound,
	ErrCodeMemberInvalid:  http.StatusBadRequest,

	ErrCodeVisitInvalid:        http.StatusBadRequest,
	ErrCodeVisitPayloadInvalid: http.StatusUnprocessableEntity,
	ErrCodeVisitPublishFailed:  http.StatusInternalServerError,

	ErrCodeFormNotFound:        http.StatusNotFound,
	ErrCodeInstrumentUnknown:   http.StatusNotFound,
	ErrCodeSessionNotFound:     http.StatusNotFound,
	ErrCodeSessionBusy:         http.StatusConflict,
	ErrCodeSessionFormMismatch: http.StatusConflict,

	ErrCodeReportGenerationFailed: http.StatusInternalServerError,
	ErrCodeReportArchiveFailed:    http.StatusInternalServerError,
	ErrCodeReportArchiveDisabled:  http.StatusServiceUnavailable,
}

// ErrorCodeMessage holds the default user-facing message per code.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeMessagingError:     "messaging error",
	ErrCodeStorageError:       "object storage error",

	ErrCodeFamilyNotFound:      "family not found",
	ErrCodeFamilyInvalid:       "invalid family",
	ErrCodeFamilySetUnresolved: "unable to resolve the student's families",

	ErrCodeMemberNotFound: "member not found",
	ErrCodeMemberInvalid:  "invalid member",

	ErrCodeVisitInvalid:        "invalid visit",
	ErrCodeVisitPayloadInvalid: "visit payload does not match its protocol",
	ErrCodeVisitPublishFailed:  "failed to publish visit event",

	ErrCodeFormNotFound:        "assessment form not found",
	ErrCodeInstrumentUnknown:   "unknown scoring instrument",
	ErrCodeSessionNotFound:     "evaluation session not found",
	ErrCodeSessionBusy:         "evaluation session is locked by another request",
	ErrCodeSessionFormMismatch: "evaluation session belongs to a different form",

	ErrCodeReportGenerationFailed: "failed to generate community report",
	ErrCodeReportArchiveFailed:    "failed to archive community report",
	ErrCodeReportArchiveDisabled:  "report archive is not configured",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
