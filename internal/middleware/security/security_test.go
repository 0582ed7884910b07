package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeadersApplied(t *testing.T) {
	handler := Headers(DefaultHeadersConfig())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	cases := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	}
	for i, c := range cases {
		if got := rr.Header().Get(c.header); got != c.want {
			t.Errorf("case %d: %s = %q, want %q", i, c.header, got, c.want)
		}
	}
	if got := rr.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS must not be set over plain HTTP, got %q", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	e := NewClientIPExtractor()

	cases := []struct {
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		// Direct connection, no proxy headers.
		{"203.0.113.7:4321", "", "", "203.0.113.7"},
		// Trusted proxy forwards the real client.
		{"127.0.0.1:4321", "203.0.113.9", "", "203.0.113.9"},
		{"10.1.2.3:80", "", "203.0.113.10", "203.0.113.10"},
		// Multiple hops: first address wins.
		{"192.168.1.1:80", "203.0.113.11, 10.0.0.1", "", "203.0.113.11"},
		// Untrusted peer cannot spoof via forwarded headers.
		{"203.0.113.7:4321", "1.2.3.4", "", "203.0.113.7"},
		// Garbage forwarded value falls back to the direct peer.
		{"127.0.0.1:4321", "not-an-ip", "", "127.0.0.1"},
	}
	for i, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = c.remoteAddr
		if c.xff != "" {
			r.Header.Set("X-Forwarded-For", c.xff)
		}
		if c.xri != "" {
			r.Header.Set("X-Real-IP", c.xri)
		}
		if got := e.ExtractClientIP(r); got != c.want {
			t.Errorf("case %d: got %q, want %q", i, got, c.want)
		}
	}
}

func TestAddTrustedProxy(t *testing.T) {
	e := NewClientIPExtractor()
	if err := e.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.1:999"
	r.Header.Set("X-Forwarded-For", "198.51.100.4")
	if got := e.ExtractClientIP(r); got != "198.51.100.4" {
		t.Errorf("expected forwarded IP from newly trusted proxy, got %q", got)
	}

	if err := e.AddTrustedProxy("garbage"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}
