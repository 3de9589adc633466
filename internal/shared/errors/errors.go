package errors

import (
	stderrors "errors"
)

// ErrorCode 业务错误码
type ErrorCode string

const (
	ErrorCodeNoTemplate       ErrorCode = "NO_TEMPLATE"
	ErrorCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	ErrorCodeContentRejected  ErrorCode = "CONTENT_REJECTED"
	ErrorCodeDuplicate        ErrorCode = "DUPLICATE"
	ErrorCodeQualityUnknown   ErrorCode = "QUALITY_UNKNOWN"
	ErrorCodeDownloadFailed   ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeMetadataFailed   ErrorCode = "METADATA_FAILED"
	ErrorCodeUploadFailed     ErrorCode = "UPLOAD_FAILED"
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// ServiceError 业务错误
type ServiceError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError 创建业务错误
func NewServiceError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithCause 创建带原因的业务错误
func NewServiceErrorWithCause(code ErrorCode, message string, cause error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf 返回错误链中第一个 ServiceError 的错误码
func CodeOf(err error) (ErrorCode, bool) {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
