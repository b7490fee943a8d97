package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogapi/internal/server/apperr"
	"github.com/iudanet/blogapi/internal/server/respond"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// validatable запрос с проверкой полей (см. pkg/api)
type validatable interface {
	Validate() error
}

// decodeRequest читает JSON тело запроса и проверяет его.
// Возвращает ошибку вида apperr.ErrValidation либо apperr.ErrTooLarge,
// если тело больше maxBodyBytes.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty", nil)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.TooLarge(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		}
		return apperr.Validation(fmt.Sprintf("invalid request body: %v", err), nil)
	}

	return apperr.FromValidation(dst.Validate())
}

// sendJSON отправляет JSON ответ
func sendJSON(w http.ResponseWriter, logger *slog.Logger, data any, status int) {
	respond.JSON(w, logger, status, data)
}

// writeError переводит ошибку в HTTP ответ.
// Для 5xx клиент получает общее сообщение, причина пишется в лог.
func writeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperr.StatusCode(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		respond.Error(w, logger, status, "internal server error", nil)
		return
	}

	message := http.StatusText(status)
	var details map[string]string
	if appErr, ok := apperr.As(err); ok {
		message = appErr.Message
		details = appErr.Details
	}

	logger.DebugContext(ctx, "request rejected",
		slog.Int("status", status),
		slog.Any("error", err),
	)
	respond.Error(w, logger, status, message, details)
}
