package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// serveSecured runs one GET through a router with the given options, with an
// optional pre-middleware to seed response headers.
func serveSecured(t *testing.T, opts SecurityOptions, seed gin.HandlerFunc, mutate func(*http.Request)) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if seed != nil {
		r.Use(seed)
	}
	r.Use(SecurityHeaders(opts))
	r.GET("/suggestions", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /suggestions = %d", w.Code)
	}
	return w.Header()
}

func TestSecurityHeaders_BaselineOnly(t *testing.T) {
	h := serveSecured(t, SecurityOptions{}, func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-sec-1")
		c.Next()
	}, nil)

	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	// optional groups stay off by default
	for _, name := range []string{
		"Permissions-Policy", "X-Permitted-Cross-Domain-Policies",
		"Cache-Control", "Pragma", "Expires", "Strict-Transport-Security",
	} {
		if h.Get(name) != "" {
			t.Fatalf("unexpected %s header: %q", name, h.Get(name))
		}
	}
	// request id gets exposed for browser clients
	if h.Get("Access-Control-Expose-Headers") != "X-Request-ID" {
		t.Fatalf("expose header = %q", h.Get("Access-Control-Expose-Headers"))
	}
}

func TestSecurityHeaders_ExposeHeaderMerging(t *testing.T) {
	t.Run("appends to an existing list", func(t *testing.T) {
		h := serveSecured(t, SecurityOptions{}, func(c *gin.Context) {
			c.Header("X-Request-ID", "rid-sec-2")
			c.Header("Access-Control-Expose-Headers", "Content-Length")
			c.Next()
		}, nil)
		if got := h.Get("Access-Control-Expose-Headers"); got != "Content-Length, X-Request-ID" {
			t.Fatalf("expose header = %q", got)
		}
	})

	t.Run("never duplicates", func(t *testing.T) {
		h := serveSecured(t, SecurityOptions{}, func(c *gin.Context) {
			c.Header("X-Request-ID", "rid-sec-3")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Length")
			c.Next()
		}, nil)
		if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Content-Length" {
			t.Fatalf("expose header should stay unchanged, got %q", got)
		}
	})
}

func TestSecurityHeaders_PolicyCacheAndHSTSOverTLS(t *testing.T) {
	h := serveSecured(t, SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}, nil, func(req *http.Request) {
		req.TLS = &tls.ConnectionState{}
	})

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_HSTSBehindProxy(t *testing.T) {
	h := serveSecured(t, SecurityOptions{
		EnableHSTS: true,
		HSTSMaxAge: time.Hour,
	}, nil, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https")
	})
	if got := h.Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=") {
		t.Fatalf("expected HSTS behind TLS-terminating proxy, got %q", got)
	}

	// plain HTTP never gets HSTS even when enabled
	h = serveSecured(t, SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}, nil, nil)
	if h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}
}

func Test_isHTTPS(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*http.Request)
		want   bool
	}{
		{"plain http", nil, false},
		{"tls connection", func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, true},
		{"forwarded proto", func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.mutate != nil {
				tc.mutate(req)
			}
			if got := isHTTPS(req); got != tc.want {
				t.Fatalf("isHTTPS = %v, want %v", got, tc.want)
			}
		})
	}
}
