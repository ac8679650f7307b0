package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrBadRequestBody is returned when a request body is not the expected JSON document.
var ErrBadRequestBody = errors.New("malformed request body")

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{Success: status < 400, Data: data}); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := StatusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	}

	message := shell.UserMessage(err)
	if errors.Is(err, ErrBadRequestBody) {
		message = err.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{Success: false, Error: message, Code: shell.ErrorType(err)}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// StatusFor maps an error class to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequestBody),
		errors.Is(err, circulation.ErrValidation),
		errors.Is(err, circulation.ErrInvalidArgument),
		errors.Is(err, catalog.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, circulation.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, circulation.ErrOutOfStock),
		errors.Is(err, circulation.ErrLimitExceeded),
		errors.Is(err, circulation.ErrNoActiveLoan),
		errors.Is(err, circulation.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, circulation.ErrMetadataUnavailable):
		return http.StatusUnprocessableEntity
	case shell.IsTimeoutError(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, catalog.ErrServer),
		errors.Is(err, catalog.ErrRateLimited),
		errors.Is(err, catalog.ErrBadRequest),
		errors.Is(err, catalog.ErrInvalidXML):
		return http.StatusBadGateway
	case errors.Is(err, circulation.ErrStoreUnavailable), shell.IsCancellationError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
