// Package apperr описывает ошибки уровня приложения и их HTTP статусы.
//
// Вид ошибки (Kind) проверяется через errors.Is:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
package apperr

import (
	"errors"
	"net/http"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

// Виды ошибок
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrTooLarge       = errors.New("request entity too large")
)

// Error ошибка с видом, сообщением для клиента и необязательной причиной.
// Причина (Err) в ответ клиенту не попадает.
type Error struct {
	Kind    error
	Err     error
	Details map[string]string
	Message string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap позволяет errors.Is находить как вид ошибки, так и причину.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New создает ошибку заданного вида.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap создает ошибку заданного вида с причиной.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation ошибка входных данных с деталями по полям.
func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Details: details}
}

// Authentication ошибка аутентификации. Сообщение должно быть общим,
// без указания, что именно не совпало.
func Authentication(message string) *Error {
	return New(ErrAuthentication, message)
}

// NotFound ресурс не найден.
func NotFound(message string) *Error {
	return New(ErrNotFound, message)
}

// Conflict ресурс уже существует или его нельзя изменить в текущем состоянии.
func Conflict(message string) *Error {
	return New(ErrConflict, message)
}

// TooLarge тело запроса превышает допустимый размер.
func TooLarge(message string) *Error {
	return New(ErrTooLarge, message)
}

// FromValidation переводит ошибку ozzo-validation в ErrValidation с деталями по полям.
// Внутренние ошибки правил и прочие ошибки возвращаются без изменений.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs ozzo.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for field, fe := range fieldErrs {
			if fe != nil {
				details[field] = fe.Error()
			}
		}
		return Validation("request validation failed", details)
	}

	var internal ozzo.InternalError
	if errors.As(err, &internal) {
		return err
	}

	return Validation(err.Error(), nil)
}

// StatusCode возвращает HTTP статус для ошибки.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// As возвращает *Error из цепочки err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
