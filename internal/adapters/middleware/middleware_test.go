package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		origin      string
		method      string
		expectCode  int
		expectAllow string
	}{
		{name: "allowed_origin", allowed: []string{"http://localhost:3000"}, origin: "http://localhost:3000", method: http.MethodGet, expectCode: http.StatusOK, expectAllow: "http://localhost:3000"},
		{name: "other_origin", allowed: []string{"http://localhost:3000"}, origin: "http://evil.test", method: http.MethodGet, expectCode: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://any.test", method: http.MethodGet, expectCode: http.StatusOK, expectAllow: "http://any.test"},
		{name: "preflight", allowed: []string{"http://localhost:3000"}, origin: "http://localhost:3000", method: http.MethodOptions, expectCode: http.StatusNoContent, expectAllow: "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/console", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(okHandler).ServeHTTP(rr, req)

			if rr.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.expectAllow {
				t.Errorf("expected allow origin %q, got %q", tt.expectAllow, got)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/console/actions", nil))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=409") || !strings.Contains(out, "path=/api/console/actions") {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute, nil)(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/console/actions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, time.Minute, nil)(okHandler)
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d limited with rate limiting disabled", i)
		}
	}
}
