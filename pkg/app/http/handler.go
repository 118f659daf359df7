// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/chainsafe/solana-bridge-middleware/pkg/app/errors"
	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
// This allows using clean error-returning handlers with any router (chi, http.ServeMux, etc.)
//
// Usage with chi:
//
//	r.Post("/send", http.HandleError(handler.send))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

type errorResponse struct {
	ErrMsg     string `json:"error"`
	ErrMsgCode int    `json:"code"`
	Reason     string `json:"reason,omitempty"`
}

// DefaultErrorHandler handles errors returned from HTTP handlers.
// Bridge errors keep their stable machine-readable code in the "reason"
// field so clients can branch on it without parsing messages.
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	var reason string
	var bridgeErr *bridge.Error
	if errors.As(err, &bridgeErr) {
		reason = bridgeErr.Code()
	}

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		writeError(w, svcErr.StatusCode(), svcErr.Message, reason)
		return
	}

	writeError(w, http.StatusInternalServerError, "Unexpected Service Error", reason)
}

func writeError(w http.ResponseWriter, status int, message, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&errorResponse{
		ErrMsg:     message,
		ErrMsgCode: status,
		Reason:     reason,
	})
}
