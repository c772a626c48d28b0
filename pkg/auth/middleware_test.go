package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	jwtService := NewJWTService(testSecret)
	valid, _ := jwtService.GenerateJWT(42, time.Now().Add(time.Hour))

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedUser int
	}{
		{name: "No header", header: "", expectedCode: http.StatusUnauthorized},
		{name: "Not bearer", header: "Basic abc", expectedCode: http.StatusUnauthorized},
		{name: "Bad token", header: "Bearer nope", expectedCode: http.StatusUnauthorized},
		{name: "Valid token", header: "Bearer " + valid, expectedCode: http.StatusOK, expectedUser: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser int
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Middleware(jwtService)(next).ServeHTTP(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedUser, gotUser)
		})
	}
}
