package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cafe-ordering/internal/domain"
)

// WriteJSON отдаёт JSON с нужным статусом
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps the domain error taxonomy onto the {success:false, ...} envelope.
func WriteError(w http.ResponseWriter, err error) {
	code, body := ErrorBody(err)
	WriteJSON(w, code, body)
}

func ErrorBody(err error) (int, map[string]any) {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
		uerr *domain.UnsupportedCompanyError
		xerr *domain.ExternalCallError
	)
	switch {
	case errors.As(err, &verr):
		body := map[string]any{"success": false, "error": verr.Error()}
		if len(verr.Required) > 0 {
			body["required"] = verr.Required
		}
		return http.StatusBadRequest, body
	case errors.As(err, &nerr):
		return http.StatusNotFound, map[string]any{"success": false, "error": nerr.Error()}
	case errors.As(err, &uerr):
		return http.StatusBadRequest, map[string]any{"success": false, "error": uerr.Error()}
	case errors.As(err, &xerr):
		return http.StatusBadGateway, map[string]any{"success": false, "error": xerr.Error(), "retryable": xerr.Retryable}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, map[string]any{"success": false, "error": err.Error()}
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrLocked),
		errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, map[string]any{"success": false, "error": err.Error()}
	default:
		return http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Internal server error",
			"details": err.Error(),
		}
	}
}

// DecodeJSON reads the request body into v; a malformed body is a ValidationError.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ValidationError{Message: "Invalid JSON body: " + err.Error()}
	}
	return nil
}

// AtoiDefault: безопасный парсер int с дефолтом
func AtoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}
