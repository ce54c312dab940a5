package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthRequire(t *testing.T) {
	auth := NewAuth("test-secret")

	var gotID uint
	handler := auth.Require(func(w http.ResponseWriter, r *http.Request) {
		gotID = customerID(r)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantID     uint
	}{
		{"valid token", "Bearer " + signToken(t, "test-secret", "42"), http.StatusOK, 42},
		{"missing header", "", http.StatusUnauthorized, 0},
		{"not bearer", "Basic abcdef", http.StatusUnauthorized, 0},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "42"), http.StatusUnauthorized, 0},
		{"non-numeric subject", "Bearer " + signToken(t, "test-secret", "asha"), http.StatusUnauthorized, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = 0
			r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestEnableCORS(t *testing.T) {
	wrapped := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code, "preflight short-circuits")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTeapot, w.Code, "other methods pass through")
}
