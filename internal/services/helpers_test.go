package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection serializes statements so concurrent tests never see
	// shared-cache table locks.
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

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *testClock { return &testClock{now: t.UTC()} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeTimers records registrations without ever firing on its own.
type fakeTimers struct {
	mu        sync.Mutex
	fns       map[string]func()
	at        map[string]time.Time
	cancelled []string
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{fns: map[string]func(){}, at: map[string]time.Time{}}
}

func (f *fakeTimers) Register(id string, at time.Time, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fns[id] = fn
	f.at[id] = at
}

func (f *fakeTimers) Cancel(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.fns[id]
	delete(f.fns, id)
	delete(f.at, id)
	f.cancelled = append(f.cancelled, id)
	return ok
}

func (f *fakeTimers) callback(id string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn, ok := f.fns[id]
	return fn, ok
}

func (f *fakeTimers) registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fns)
}

// recordingNotifier keeps every event.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingNotifier) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fixture wires every service over one database.
type fixture struct {
	db        *gorm.DB
	clock     *testClock
	timers    *fakeTimers
	notes     *recordingNotifier
	templates *TemplateService
	elig      *EligibilityService
	exec      *Executor
	sched     *Scheduler
}

var baseTime = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	clock := newClock(baseTime)
	nop := zerolog.Nop()
	f := &fixture{
		db:     db,
		clock:  clock,
		timers: newFakeTimers(),
		notes:  &recordingNotifier{},
	}
	f.templates = &TemplateService{DB: db, Now: clock.Now}
	f.elig = &EligibilityService{DB: db}
	f.exec = &Executor{DB: db, Notifier: f.notes, Now: clock.Now, Logger: &nop}
	f.sched = &Scheduler{
		DB:          db,
		Executor:    f.exec,
		Timers:      f.timers,
		Notifier:    f.notes,
		Now:         clock.Now,
		Logger:      &nop,
		MinLeadTime: time.Hour,
	}
	return f
}

const ownerID = "owner-1"

func (f *fixture) business(t *testing.T, id string) *domain.Business {
	t.Helper()
	b := &domain.Business{ID: id, OwnerID: ownerID, Name: "Blue Door Cafe", ContactPhone: "+15550100"}
	if err := repo.CreateBusiness(context.Background(), f.db, b); err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return b
}

func (f *fixture) review(t *testing.T, id, businessID string, rating int, author string) *domain.Review {
	t.Helper()
	r := &domain.Review{
		ID:          id,
		BusinessID:  businessID,
		Rating:      rating,
		Content:     "The coffee was great but service was slow",
		AuthorName:  author,
		AuthorEmail: author + "@example.com",
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	uid := "user-" + id
	r.AuthorID = &uid
	if err := repo.CreateReview(context.Background(), f.db, r); err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return r
}

func (f *fixture) anonymousReview(t *testing.T, id, businessID string) *domain.Review {
	t.Helper()
	r := &domain.Review{ID: id, BusinessID: businessID, Rating: 3, Content: "meh", IsAnonymous: true}
	if err := repo.CreateReview(context.Background(), f.db, r); err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return r
}

func (f *fixture) template(t *testing.T, businessID, name, body string) *domain.ResponseTemplate {
	t.Helper()
	tpl, err := f.templates.Create(context.Background(), businessID, ownerID, TemplateInput{
		Name:     name,
		Body:     body,
		Category: domain.CategoryThankYou,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func items(ids ...string) []domain.ResponseItem {
	out := make([]domain.ResponseItem, len(ids))
	for i, id := range ids {
		out[i] = domain.ResponseItem{ReviewID: id}
	}
	return out
}

func mustReview(t *testing.T, db *gorm.DB, id string) *domain.Review {
	t.Helper()
	r, err := repo.GetReview(context.Background(), db, id)
	if err != nil {
		t.Fatalf("get review %s: %v", id, err)
	}
	return r
}

func mustTemplate(t *testing.T, db *gorm.DB, id string) *domain.ResponseTemplate {
	t.Helper()
	tpl, err := repo.GetTemplate(context.Background(), db, id)
	if err != nil {
		t.Fatalf("get template %s: %v", id, err)
	}
	return tpl
}
