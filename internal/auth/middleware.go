package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Middleware returns middleware that authenticates requests using the bearer
// service token in the Authorization header. When no token hash is configured
// the middleware is a pass-through. onFailure is invoked on each rejected
// request (metrics hook); it may be nil.
func Middleware(v *Verifier, onFailure func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				reject(w, onFailure, "missing or malformed authorization header")
				return
			}

			if err := v.Verify(token); err != nil {
				reject(w, onFailure, "invalid service token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func reject(w http.ResponseWriter, onFailure func(), message string) {
	if onFailure != nil {
		onFailure()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{
			Code:    "unauthorized",
			Message: message,
		},
	})
}
