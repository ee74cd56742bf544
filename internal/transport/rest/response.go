package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/leblango/leblango-backend/internal/domain"
)

// errorResponse is the envelope every non-2xx response uses.
type errorResponse struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Detail  string            `json:"detail"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Error codes carried in the envelope.
const (
	codeValidation   = "validation_error"
	codeUnauthorized = "unauthenticated"
	codeForbidden    = "permission_denied"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeServer       = "server_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

// writeDomainError maps a service error onto the envelope. State conflicts
// from the moderation workflow answer 400 with the current status in the
// detail; duplicate registrations answer 409.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		fields := make(map[string]string, len(vErr.Errors))
		for _, f := range vErr.Errors {
			fields[f.Field] = f.Message
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:   codeValidation,
			Detail: "invalid input",
			Errors: fields,
		})
		return
	}

	var cErr *domain.ConflictError
	switch {
	case errors.As(err, &cErr):
		writeError(w, http.StatusBadRequest, codeConflict, cErr.Message)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "permission denied")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, codeConflict, "already exists")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, codeConflict, err.Error())
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, codeServer, "internal server error")
	}
}

// clientIP prefers X-Forwarded-For so logs behind a proxy carry the real
// client address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
