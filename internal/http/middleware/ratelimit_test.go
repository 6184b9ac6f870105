package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		user any
		want string
	}{
		{"anonymous", nil, "ip:198.51.100.7"},
		{"owner", "owner-42", "user:owner-42"},
		{"empty identity", "", "ip:198.51.100.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/businesses/b-1/schedules", nil)
			c.Request.RemoteAddr = "198.51.100.7:40000"
			if tc.user != nil {
				c.Set(userIDKey, tc.user)
			}
			if got := KeyByUserOrIP()(c); got != tc.want {
				t.Fatalf("key = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimiter_Visitors(t *testing.T) {
	rl := NewRateLimiter(3, -2, KeyByUserOrIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d; want 1", rl.burst)
	}
	a := rl.getVisitor("user:owner-a")
	if rl.getVisitor("user:owner-a") != a {
		t.Fatalf("bucket not reused")
	}
	if rl.getVisitor("user:owner-b") == a {
		t.Fatalf("buckets shared across keys")
	}

	rl.mu.Lock()
	rl.visitors["user:idle"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: time.Now().Add(-2 * visitorTTL)}
	rl.cleanupN = cleanupEveryN - 1
	rl.mu.Unlock()

	rl.getVisitor("user:owner-a")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["user:idle"]; ok {
		t.Fatalf("idle visitor survived eviction")
	}
	if _, ok := rl.visitors["user:owner-a"]; !ok {
		t.Fatalf("active visitor evicted")
	}
	if rl.cleanupN != 0 {
		t.Fatalf("cleanup counter not reset: %d", rl.cleanupN)
	}
}

func TestIsRateBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		val  any
		set  bool
		want bool
	}{
		{nil, false, false},
		{true, true, true},
		{false, true, false},
		{"true", true, false},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if tc.set {
			c.Set(ctxKeyRateBypass, tc.val)
		}
		if got := IsRateBypass(c); got != tc.want {
			t.Errorf("IsRateBypass(%v) = %v; want %v", tc.val, got, tc.want)
		}
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.5, 1, KeyByUserOrIP())

	r := gin.New()
	r.Use(RequestID(), Identity(), func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}, rl.Handler())
	r.POST("/schedules", func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(user string, replay bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/schedules", nil)
		req.Header.Set(userIDHeader, user)
		req.Header.Set(requestIDHeader, "rid-"+user)
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := send("owner-a", false); w.Code != http.StatusCreated {
		t.Fatalf("first request = %d", w.Code)
	}
	if w := send("owner-b", false); w.Code != http.StatusCreated {
		t.Fatalf("other requester limited: %d", w.Code)
	}

	w := send("owner-a", false)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d; want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q; want 2", got)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["code"] != "rate_limited" || body["message"] != "rate limit exceeded" || body["request_id"] != "rid-owner-a" {
		t.Fatalf("envelope = %v", body)
	}

	if w := send("owner-a", true); w.Code != http.StatusCreated {
		t.Fatalf("flagged replay limited: %d", w.Code)
	}
}

func TestRateLimiter_retryAfter(t *testing.T) {
	cases := []struct {
		rps  float64
		want string
	}{
		{20, "1"},
		{1, "1"},
		{0.3, "4"},
		{0, "1"},
		{float64(rate.Inf), "1"},
	}
	for _, tc := range cases {
		if got := NewRateLimiter(tc.rps, 1, KeyByUserOrIP()).retryAfter(); got != tc.want {
			t.Errorf("rps=%v: retryAfter = %q; want %q", tc.rps, got, tc.want)
		}
	}
}
