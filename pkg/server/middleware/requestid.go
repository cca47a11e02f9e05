package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier on responses.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request a unique identifier, preserving one
// supplied by the caller.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
