package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/quill/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"blog.example.com", "blog.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"a.b.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evilexample.com", "*.example.com", false},
		{"other.com", "blog.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.host+"~"+tt.pattern, func(t *testing.T) {
			if got := matchHost(tt.host, tt.pattern); got != tt.want {
				t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"Blog.Example.com"}, logger.Nop())(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "blog.example.com:8080"
	if rec := serve(h, req); rec.Code != http.StatusOK {
		t.Errorf("allowed host with port = %d", rec.Code)
	}

	req.Host = "attacker.test"
	if rec := serve(h, req); rec.Code != http.StatusForbidden {
		t.Errorf("other host = %d, want 403", rec.Code)
	}

	open := EnforceHost(nil, logger.Nop())(ok)
	if rec := serve(open, req); rec.Code != http.StatusOK {
		t.Errorf("empty list should pass through, got %d", rec.Code)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		trustProxy bool
		want       int
	}{
		{name: "inside", remote: "10.1.2.3:1000", want: 200},
		{name: "outside", remote: "192.0.2.1:1000", want: 403},
		{name: "xff ignored without trust", remote: "192.0.2.1:1000", xff: "10.0.0.1", want: 403},
		{name: "xff used with trust", remote: "127.0.0.1:1000", xff: "10.0.0.1, 127.0.0.1", trustProxy: true, want: 200},
		{name: "exact ip", remote: "[2001:db8::1]:1000", want: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS([]string{"10.0.0.0/8", "2001:db8::1"}, tt.trustProxy, logger.Nop())(ok)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if rec := serve(h, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{Burst: 2, PerMinute: 60, Now: func() time.Time { return now }})(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1000"

	for i, want := range []string{"1", "0"} {
		rec := serve(h, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != want {
			t.Errorf("request %d remaining = %q, want %q", i, got, want)
		}
	}

	rec := serve(h, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit = %d, want 429", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "192.0.2.2:1000"
	if rec := serve(h, other); rec.Code != http.StatusOK {
		t.Errorf("other client = %d, buckets must be per IP", rec.Code)
	}

	now = now.Add(time.Second)
	if rec := serve(h, req); rec.Code != http.StatusOK {
		t.Errorf("after refill = %d, want 200", rec.Code)
	}
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, PerMinute: 1, IdleTTL: time.Minute}, start)

	l.take("a", start)
	l.take("b", start.Add(90*time.Second))
	if _, found := l.buckets["a"]; found {
		t.Error("idle bucket a was not swept")
	}
	if _, found := l.buckets["b"]; !found {
		t.Error("bucket b missing")
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		preflight  bool
		wantStatus int
		wantAllow  string
	}{
		{name: "disabled", origin: "https://a.test", wantStatus: 200},
		{name: "wildcard", origins: []string{"*"}, origin: "https://a.test", wantStatus: 200, wantAllow: "*"},
		{name: "listed", origins: []string{"https://a.test"}, origin: "https://a.test", wantStatus: 200, wantAllow: "https://a.test"},
		{name: "unlisted", origins: []string{"https://a.test"}, origin: "https://b.test", wantStatus: 200},
		{name: "no origin header", origins: []string{"*"}, wantStatus: 200},
		{name: "preflight", origins: []string{"https://a.test"}, origin: "https://a.test", preflight: true, wantStatus: 204, wantAllow: "https://a.test"},
		{name: "preflight unlisted", origins: []string{"https://a.test"}, origin: "https://b.test", preflight: true, wantStatus: 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/posts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "GET")
			}

			rec := serve(CORS(tt.origins)(ok), req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("allow origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}
