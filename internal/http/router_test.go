package httpapi

import (
	"bytes"
	stdgzip "compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/horlartundhey/servisbet-sub001/internal/config"
	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/http/middleware"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// idleTimers satisfies services.OneShot without ever firing.
type idleTimers struct{}

func (idleTimers) Register(string, time.Time, func()) {}
func (idleTimers) Cancel(string) bool                 { return true }

func realServices(db *gorm.DB) Services {
	nop := zerolog.Nop()
	exec := &services.Executor{DB: db, Logger: &nop}
	return Services{
		Templates:   &services.TemplateService{DB: db},
		Eligibility: &services.EligibilityService{DB: db},
		Executor:    exec,
		Scheduler:   &services.Scheduler{DB: db, Executor: exec, Timers: idleTimers{}, Logger: &nop},
	}
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

func serve(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	RegisterRoutes(r, db, realServices(db), testConfig())

	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	w = serve(r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}
	if w.Header().Get("Content-Encoding") != "" {
		t.Fatalf("/metrics must not be gzipped by the router")
	}

	if w := serve(r, http.MethodGet, "/nope", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/health", nil, nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/swagger/index.html", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger must be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	db := newTestDB(t)
	RegisterRoutes(r, db, realServices(db), cfg)

	w := serve(r, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
	expose := w.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"ETag", middleware.HeaderIdempotentReplay} {
		if !strings.Contains(strings.ToLower(expose), strings.ToLower(h)) {
			t.Fatalf("expose headers %q missing %s", expose, h)
		}
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	db := newTestDB(t)
	RegisterRoutes(r, db, realServices(db), cfg)

	w := serve(r, http.MethodGet, "/swagger/doc.json", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
	var doc struct {
		BasePath string         `json:"basePath"`
		Paths    map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode swagger doc: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Fatalf("basePath = %q", doc.BasePath)
	}
	if _, ok := doc.Paths["/businesses/{id}/schedules"]; !ok {
		t.Fatalf("schedules path missing from doc: %v", doc.Paths)
	}
}

func TestRegisterRoutes_TemplateFlowWithRealServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	RegisterRoutes(r, db, realServices(db), testConfig())

	biz := &domain.Business{ID: uuid.NewString(), OwnerID: "owner-1", Name: "Blue Door Cafe"}
	if err := repo.CreateBusiness(context.Background(), db, biz); err != nil {
		t.Fatalf("seed business: %v", err)
	}
	owner := map[string]string{"X-User-ID": "owner-1"}

	w := serve(r, http.MethodPost, "/api/v1/businesses/"+biz.ID+"/templates", map[string]any{
		"name":     "Five star thanks",
		"content":  "Hi {{customerName}}, thanks for visiting {{businessName}}!",
		"category": "positive",
	}, owner)
	if w.Code != http.StatusCreated {
		t.Fatalf("create template: %d %s", w.Code, w.Body.String())
	}
	var tpl domain.ResponseTemplate
	if err := json.Unmarshal(w.Body.Bytes(), &tpl); err != nil || tpl.ID == "" {
		t.Fatalf("decode template: %v %s", err, w.Body.String())
	}

	if w := serve(r, http.MethodGet, "/api/v1/templates/"+tpl.ID, nil, owner); w.Code != http.StatusOK {
		t.Fatalf("get template: %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/v1/templates/"+tpl.ID, nil, map[string]string{"X-User-ID": "intruder"}); w.Code != http.StatusForbidden {
		t.Fatalf("intruder get template: %d", w.Code)
	}

	// Compressed list
	w = serve(r, http.MethodGet, "/api/v1/businesses/"+biz.ID+"/templates", nil,
		map[string]string{"X-User-ID": "owner-1", "Accept-Encoding": "gzip"})
	if w.Code != http.StatusOK || w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("list: status=%d encoding=%q", w.Code, w.Header().Get("Content-Encoding"))
	}
	zr, err := stdgzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var list struct {
		Templates []domain.ResponseTemplate `json:"templates"`
		Total     int                       `json:"total"`
	}
	if err := json.NewDecoder(zr).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || list.Templates[0].ID != tpl.ID {
		t.Fatalf("list = %+v", list)
	}

	w = serve(r, http.MethodGet, "/api/v1/businesses/"+biz.ID+"/reviews/eligible", nil, owner)
	if w.Code != http.StatusOK {
		t.Fatalf("eligible reviews: %d %s", w.Code, w.Body.String())
	}
}

// countingSchedules records how many create calls reached the service.
type countingSchedules struct {
	calls int
}

func (s *countingSchedules) Schedule(_ context.Context, req services.ScheduleRequest) (*services.ScheduleReceipt, error) {
	s.calls++
	return &services.ScheduleReceipt{ScheduleID: uuid.NewString(), ScheduledTime: req.ScheduledTime, ItemCount: len(req.Items)}, nil
}

func (s *countingSchedules) Get(context.Context, string, string) (*domain.ScheduledBatch, error) {
	return nil, services.ErrScheduleNotFound
}

func (s *countingSchedules) List(context.Context, string, string) ([]domain.ScheduledBatch, error) {
	return nil, nil
}

func (s *countingSchedules) Cancel(context.Context, string, string) (*domain.ScheduledBatch, error) {
	return nil, services.ErrScheduleNotFound
}

func (s *countingSchedules) Analytics(context.Context, string, string) (*services.Analytics, error) {
	return &services.Analytics{}, nil
}

func TestRegisterRoutes_IdempotencyHitBypassesRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	db := newTestDB(t)
	svc := realServices(db)
	sched := &countingSchedules{}
	svc.Scheduler = sched
	RegisterRoutes(r, db, svc, cfg)

	bizID := uuid.NewString()
	path := "/api/v1/businesses/" + bizID + "/schedules"
	body := map[string]any{
		"template_id":    uuid.NewString(),
		"responses":      []map[string]string{{"review_id": "r1"}},
		"scheduled_time": time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339),
	}
	withKey := map[string]string{"X-User-ID": "owner-1", middleware.HeaderIdempotencyKey: "sched-key-1"}

	if w := serve(r, http.MethodPost, path, body, withKey); w.Code != http.StatusCreated {
		t.Fatalf("first create: %d %s", w.Code, w.Body.String())
	}
	// Bucket is empty and the key is unknown: limited.
	if w := serve(r, http.MethodPost, path, body, withKey); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before the key is recorded, got %d", w.Code)
	}

	if _, err := repo.CreateIdempotency(context.Background(), db, "owner-1", bizID, "sched-key-1", uuid.NewString(), http.StatusCreated, time.Hour); err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}
	if w := serve(r, http.MethodPost, path, body, withKey); w.Code == http.StatusTooManyRequests {
		t.Fatalf("known key must bypass the limiter")
	}
	// Another business scopes the key differently.
	other := "/api/v1/businesses/" + uuid.NewString() + "/schedules"
	if w := serve(r, http.MethodPost, other, body, withKey); w.Code != http.StatusTooManyRequests {
		t.Fatalf("key from another business must not bypass, got %d", w.Code)
	}
	if sched.calls != 2 {
		t.Fatalf("service calls = %d, want 2", sched.calls)
	}
}

func Test_idempotencyLookup_ErrorsAreMisses(t *testing.T) {
	db := newTestDB(t)
	lookup := idempotencyLookup(db)
	ctx := context.Background()

	if hit, err := lookup(ctx, "u1", "b1", "k1", time.Now()); hit || err != nil {
		t.Fatalf("empty table: hit=%v err=%v", hit, err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "u1", "b1", "k1", "s1", http.StatusCreated, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if hit, _ := lookup(ctx, "u1", "b1", "k1", time.Now()); !hit {
		t.Fatalf("expected hit")
	}
	if hit, _ := lookup(ctx, "u1", "b1", "k1", time.Now().Add(2*time.Hour)); hit {
		t.Fatalf("expired key must miss")
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()
	if hit, err := lookup(ctx, "u1", "b1", "k1", time.Now()); hit || err != nil {
		t.Fatalf("closed db: hit=%v err=%v", hit, err)
	}
	if hit, err := idempotencyLookup(nil)(ctx, "u1", "b1", "k1", time.Now()); hit || err != nil {
		t.Fatalf("nil db: hit=%v err=%v", hit, err)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}

// Smoke test that a request traverses the full middleware pipeline.
func TestPipeline_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	db := newTestDB(t)
	RegisterRoutes(r, db, realServices(db), cfg)

	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing: %v", w.Header())
	}
}
