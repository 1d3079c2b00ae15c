package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRemoteHost(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "ipv4 with port", addr: "198.51.100.10:1234", want: "198.51.100.10"},
		{name: "ipv6 with port", addr: net.JoinHostPort("2001:db8::2", "443"), want: "2001:db8::2"},
		{name: "set by RealIP without port", addr: "203.0.113.1", want: "203.0.113.1"},
		{name: "bare ipv6", addr: "2001:db8::1", want: "2001:db8::1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := remoteHost(tc.addr); got != tc.want {
				t.Fatalf("remoteHost(%q) = %q, want %q", tc.addr, got, tc.want)
			}
		})
	}
}

func TestWindowLimiterResetsAndSweeps(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newWindowLimiter(1, time.Minute, start)

	if ok, _ := l.allow("a", start); !ok {
		t.Fatal("first request should pass")
	}
	ok, wait := l.allow("a", start.Add(20*time.Second))
	if ok || wait != 40*time.Second {
		t.Fatalf("second request = %v, wait %s; want blocked for 40s", ok, wait)
	}
	if ok, _ := l.allow("a", start.Add(61*time.Second)); !ok {
		t.Fatal("request after the window should pass")
	}

	l.allow("b", start.Add(61*time.Second))
	l.allow("c", start.Add(3*time.Minute))
	if got := l.size(); got != 1 {
		t.Fatalf("expired windows should be swept, %d left", got)
	}
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			if rec.Header().Get("Retry-After") == "" {
				t.Fatal("Retry-After header missing")
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("429 body = %q, want JSON error", rec.Body.String())
			}
		}
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	other := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	other.RemoteAddr = "198.51.100.11:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client code = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %d, want 204", rec.Code)
		}
	}
}
