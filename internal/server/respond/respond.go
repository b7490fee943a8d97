// Package respond пишет JSON ответы API.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogapi/pkg/api"
)

// JSON отправляет JSON ответ с заданным статусом.
// Ошибка кодирования только логируется: заголовок уже отправлен.
func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", slog.Any("error", err))
	}
}

// Error отправляет JSON ответ с ошибкой.
func Error(w http.ResponseWriter, logger *slog.Logger, status int, message string, details map[string]string) {
	JSON(w, logger, status, api.ErrorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Details: details,
	})
}
