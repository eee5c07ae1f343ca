package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ravenmed/terminology-api/config"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		expectedCost int64
	}{
		{"Health endpoint", "/health", 5},
		{"Metrics endpoint", "/metrics", 0},
		{"Import start", "/import", 200},
		{"Import progress", "/import/progress", 5},
		{"MedDRA search", "/search/meddra", 50},
		{"WHO Drug search", "/search/whodrug", 50},
		{"Browse", "/browse/meddra", 20},
		{"Create coding", "/codings", 50},
		{"Get coding", "/codings/abc-123", 50},
		{"List versions", "/versions", 10},
		{"Activate version", "/versions/3/activate", 10},
		{"Unknown endpoint", "/unknown", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			cost := getTokenCost(req)

			if cost != tt.expectedCost {
				t.Errorf("Expected cost %d for path %s, got %d", tt.expectedCost, tt.path, cost)
			}
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		xForwardedFor string
		remoteAddr   string
		expectedAddr string
	}{
		{"Single forwarded IP", "203.0.113.1", "192.168.1.1:12345", "203.0.113.1"},
		{"Forwarded IP list keeps first", "203.0.113.1, 10.0.0.1", "192.168.1.1:12345", "203.0.113.1"},
		{"No header keeps RemoteAddr", "", "192.168.1.1:12345", "192.168.1.1:12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			req.RemoteAddr = tt.remoteAddr

			var seen string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.RemoteAddr
			}))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if seen != tt.expectedAddr {
				t.Errorf("Expected RemoteAddr %q, got %q", tt.expectedAddr, seen)
			}
		})
	}
}

func TestBlockDirectAccessMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		remoteAddr   string
		proxyHeader  string
		expectedCode int
	}{
		{"Localhost IPv4 allowed", "127.0.0.1:12345", "", http.StatusOK},
		{"Localhost IPv6 allowed", "[::1]:12345", "", http.StatusOK},
		{"Direct external blocked", "192.168.1.1:12345", "", http.StatusForbidden},
		{"Proxied request allowed", "192.168.1.1:12345", "203.0.113.1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.proxyHeader != "" {
				req.Header.Set("X-Forwarded-For", tt.proxyHeader)
			}

			rr := httptest.NewRecorder()
			handler := BlockDirectAccessMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1024 * 1024, MaxHeaderSize: 1024 * 1024}

	tests := []struct {
		name          string
		contentLength string
		expectedCode  int
	}{
		{"No Content-Length allowed", "", http.StatusOK},
		{"Exactly max size allowed", "1048576", http.StatusOK},
		{"Over max size rejected", "2000000", http.StatusRequestEntityTooLarge},
		{"Unparseable Content-Length ignored", "-100", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.contentLength != "" {
				req.Header.Set("Content-Length", tt.contentLength)
			}

			rr := httptest.NewRecorder()
			handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}
		})
	}
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	rl := NewRateLimiter()

	first := rl.getBucket("10.0.0.1")
	second := rl.getBucket("10.0.0.2")
	if first == second {
		t.Error("Expected distinct buckets per client IP")
	}
	if again := rl.getBucket("10.0.0.1"); again != first {
		t.Error("Expected the same bucket on repeat lookups")
	}
}
