package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// Коды рабочего процесса присвоения уровней. Каждая причина отказа
	// различима, чтобы клиент мог показать точное сообщение.
	ErrCodeIneligibleLevel     ErrorCode = "INELIGIBLE_LEVEL"
	ErrCodeDuplicatePending    ErrorCode = "DUPLICATE_PENDING"
	ErrCodeSelfReviewForbidden ErrorCode = "SELF_REVIEW_FORBIDDEN"
	ErrCodeAlreadyResolved     ErrorCode = "ALREADY_RESOLVED"
	ErrCodeLevelNotAvailable   ErrorCode = "LEVEL_NOT_AVAILABLE"

	// ErrCodeUnavailable — временный сбой хранилища; единственный код,
	// который вызывающей стороне имеет смысл повторить.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeSelfReviewForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeIneligibleLevel:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeDuplicatePending, ErrCodeAlreadyResolved, ErrCodeLevelNotAvailable:
		return http.StatusConflict
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки, если это AppError, иначе ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// IsRetryable сообщает, имеет ли смысл повторить вызов с теми же аргументами.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeUnavailable
}

var (
	ErrSkillNotFound    = New(ErrCodeNotFound, "навык не найден")
	ErrProposalNotFound = New(ErrCodeNotFound, "заявка не найдена")
	ErrUserNotFound     = New(ErrCodeNotFound, "участник не найден")
	ErrEventNotFound    = New(ErrCodeNotFound, "мероприятие не найдено")
	ErrResourceNotFound = New(ErrCodeNotFound, "материал не найден")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")

	ErrIneligibleLevel     = New(ErrCodeIneligibleLevel, "уровень недоступен для заявки")
	ErrDuplicatePending    = New(ErrCodeDuplicatePending, "у вас уже есть нерассмотренная заявка по этому навыку")
	ErrSelfReviewForbidden = New(ErrCodeSelfReviewForbidden, "нельзя рассматривать собственную заявку")
	ErrAlreadyResolved     = New(ErrCodeAlreadyResolved, "заявка уже рассмотрена")
	ErrLevelNotAvailable   = New(ErrCodeLevelNotAvailable, "уровень больше не доступен")
)
