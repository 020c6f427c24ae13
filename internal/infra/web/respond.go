package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"companion-marketplace/internal/domain"
)

// envelope is the uniform response shape of the API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// pageEnvelope wraps paginated listings.
type pageEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writePage(w http.ResponseWriter, data any, total, page, limit int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(pageEnvelope{Success: true, Data: data, Total: total, Page: page, Limit: limit})
}

// writeError maps a domain error onto a status code. Infra failures are
// reported without detail.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, domain.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		code, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrConflict):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrGateway):
		code, msg = http.StatusBadGateway, "payment gateway unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Message: msg})
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Success: code < 400, Message: msg})
}
