// Package security provides the response headers and client-IP handling
// shared by the API server.
package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// HeadersConfig holds security headers configuration.
type HeadersConfig struct {
	CSP string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
}

// DefaultHeadersConfig returns defaults for a JSON API that serves no
// markup of its own.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// Headers returns middleware applying the configured security headers.
func Headers(config HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", config.XContentTypeOptions)
			h.Set("X-Frame-Options", config.XFrameOptions)
			h.Set("Referrer-Policy", config.ReferrerPolicy)
			if config.CSP != "" {
				h.Set("Content-Security-Policy", config.CSP)
			}

			// HSTS only makes sense over TLS.
			if r.TLS != nil && config.HSTSMaxAge > 0 {
				hsts := fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
				if config.HSTSIncludeSubdomains {
					hsts += "; includeSubDomains"
				}
				h.Set("Strict-Transport-Security", hsts)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPExtractor resolves the real client IP, trusting forwarded
// headers only when the direct peer is a known proxy.
type ClientIPExtractor struct {
	trustedProxies []*net.IPNet
}

// NewClientIPExtractor trusts loopback and private networks by default.
func NewClientIPExtractor() *ClientIPExtractor {
	return &ClientIPExtractor{
		trustedProxies: []*net.IPNet{
			mustParseCIDR("127.0.0.0/8"),
			mustParseCIDR("10.0.0.0/8"),
			mustParseCIDR("172.16.0.0/12"),
			mustParseCIDR("192.168.0.0/16"),
		},
	}
}

// AddTrustedProxy adds a trusted proxy network.
func (e *ClientIPExtractor) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	e.trustedProxies = append(e.trustedProxies, network)
	return nil
}

// ExtractClientIP returns the client address for logging and rate
// limiting. X-Forwarded-For and X-Real-IP are honored only from
// trusted proxies; anyone else could set them to dodge the limiter.
func (e *ClientIPExtractor) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !e.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	return directIP
}

func (e *ClientIPExtractor) isTrustedProxy(ip net.IP) bool {
	for _, network := range e.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func mustParseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}
