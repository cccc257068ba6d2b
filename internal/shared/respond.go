package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Envelope is the JSON body shape every console endpoint answers with.
// Data mirrors the upstream API's {data: ...} convention.
type Envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// RespondJSON writes a success envelope.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Data: data})
}

// RespondError maps the error taxonomy onto status codes and writes an
// error envelope. Unknown errors become opaque 502s so upstream details
// never leak unvetted.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusBadGateway
	message := "upstream request failed"

	switch {
	case errors.Is(err, ErrValidation):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "session expired"
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	default:
		var userErr interface{ UserMessage() string }
		if errors.As(err, &userErr) {
			message = userErr.UserMessage()
		}
	}

	if logger != nil {
		logger.Warn("request failed", slog.Int("status", status), slog.Any("error", err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: message})
}
