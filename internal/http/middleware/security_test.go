package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecurity(opt SecurityOptions, prep func(*http.Request), pre gin.HandlerFunc) http.Header {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/schedules", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/schedules", nil)
	if prep != nil {
		prep(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveSecurity(SecurityOptions{}, nil, nil)

	for k, want := range map[string]string{
		"X-Content-Type-Options":        "nosniff",
		"X-Frame-Options":               "DENY",
		"Referrer-Policy":               "no-referrer",
		"Access-Control-Expose-Headers": "X-Request-ID, ETag, Idempotent-Replayed",
	} {
		if got := h.Get(k); got != want {
			t.Errorf("%s = %q; want %q", k, got, want)
		}
	}
	for _, k := range []string{"Permissions-Policy", "X-Permitted-Cross-Domain-Policies", "Cache-Control", "Pragma", "Expires", "Strict-Transport-Security"} {
		if got := h.Get(k); got != "" {
			t.Errorf("%s should be unset, got %q", k, got)
		}
	}
}

func TestSecurityHeaders_PolicyAndNoStore(t *testing.T) {
	h := serveSecurity(SecurityOptions{NoStore: true, EnablePolicy: true}, nil, nil)
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	viaTLS := func(r *http.Request) { r.TLS = &tls.ConnectionState{} }
	viaProxy := func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") }

	cases := []struct {
		name string
		opt  SecurityOptions
		prep func(*http.Request)
		want string
	}{
		{"disabled over tls", SecurityOptions{HSTSMaxAge: time.Hour}, viaTLS, ""},
		{"enabled over plain http", SecurityOptions{EnableHSTS: true}, nil, ""},
		{"tls with max age", SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}, viaTLS, "max-age=86400; includeSubDomains; preload"},
		{"proxy with default max age", SecurityOptions{EnableHSTS: true}, viaProxy, "max-age=15552000; includeSubDomains; preload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := serveSecurity(tc.opt, tc.prep, nil).Get("Strict-Transport-Security"); got != tc.want {
				t.Fatalf("HSTS = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_KeepsCORSExposeList(t *testing.T) {
	pre := func(c *gin.Context) {
		c.Header("Access-Control-Expose-Headers", "Content-Length, etag")
		c.Next()
	}
	got := serveSecurity(SecurityOptions{}, nil, pre).Get("Access-Control-Expose-Headers")
	if got != "Content-Length, etag, X-Request-ID, Idempotent-Replayed" {
		t.Fatalf("expose headers = %q", got)
	}
}

func Test_exposeHeaders(t *testing.T) {
	cases := []struct {
		cur   string
		names []string
		want  string
	}{
		{"", []string{"ETag"}, "ETag"},
		{"Foo", []string{"ETag", "etag"}, "Foo, ETag"},
		{"x-request-id, Foo", []string{"X-Request-ID", "ETag"}, "x-request-id, Foo, ETag"},
		{"ETag", nil, "ETag"},
	}
	for _, tc := range cases {
		h := http.Header{}
		if tc.cur != "" {
			h.Set("Access-Control-Expose-Headers", tc.cur)
		}
		exposeHeaders(h, tc.names)
		if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
			t.Errorf("exposeHeaders(%q, %v) = %q; want %q", tc.cur, tc.names, got, tc.want)
		}
	}
}

func Test_isHTTPS(t *testing.T) {
	cases := []struct {
		name string
		prep func(*http.Request)
		want bool
	}{
		{"plain", func(*http.Request) {}, false},
		{"tls", func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, true},
		{"forwarded https", func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, true},
		{"forwarded http", func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "http") }, false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		tc.prep(req)
		if got := isHTTPS(req); got != tc.want {
			t.Errorf("%s: isHTTPS = %v; want %v", tc.name, got, tc.want)
		}
	}
}
