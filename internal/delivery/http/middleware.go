package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const customerIDKey contextKey = "customer_id"

// Auth resolves the authenticated customer from a bearer token minted by the
// external identity collaborator. This layer never authenticates; it only
// verifies the token signature and reads the subject claim.
type Auth struct {
	secret []byte
}

// NewAuth creates the bearer-token middleware with the shared signing
// secret.
func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Require wraps a handler so it only runs with a valid customer identity.
func (a *Auth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.customerFromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), customerIDKey, id)))
	}
}

func (a *Auth) customerFromRequest(r *http.Request) (uint, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return 0, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("missing subject claim: %w", err)
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed subject claim %q: %w", sub, err)
	}
	return uint(id), nil
}

// customerID returns the authenticated customer id stored by Require.
func customerID(r *http.Request) uint {
	id, _ := r.Context().Value(customerIDKey).(uint)
	return id
}

// EnableCORS allows browser frontends on other origins to call the API.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
