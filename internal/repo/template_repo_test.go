package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

func TestCreateTemplate_SecondDefaultRejectedByIndex(t *testing.T) {
	db := newTestDB(t, true)
	seedTemplate(t, db, "t1", "b1", domain.CategoryPositive, true)

	dup := &domain.ResponseTemplate{
		ID: "t2", BusinessID: "b1", OwnerID: "o", Name: "dup", Body: "x",
		Category: domain.CategoryPositive, RatingMin: 1, RatingMax: 5, IsActive: true, IsDefault: true,
	}
	if err := CreateTemplate(context.Background(), db, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	// Same category in another business, or another category, is fine.
	seedTemplate(t, db, "t3", "b2", domain.CategoryPositive, true)
	seedTemplate(t, db, "t4", "b1", domain.CategoryNegative, true)
	// Non-default siblings are unlimited.
	seedTemplate(t, db, "t5", "b1", domain.CategoryPositive, false)
	seedTemplate(t, db, "t6", "b1", domain.CategoryPositive, false)
}

func TestClearDefaultsAndMarkDefault(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	seedTemplate(t, db, "t1", "b1", domain.CategoryApology, true)
	seedTemplate(t, db, "t2", "b1", domain.CategoryApology, false)

	if err := MarkDefault(ctx, db, "t2"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("MarkDefault without clearing: want ErrDuplicate, got %v", err)
	}
	if err := ClearDefaults(ctx, db, "b1", domain.CategoryApology, "t2"); err != nil {
		t.Fatalf("ClearDefaults: %v", err)
	}
	if err := MarkDefault(ctx, db, "t2"); err != nil {
		t.Fatalf("MarkDefault: %v", err)
	}
	n, err := CountDefaults(ctx, db, "b1", domain.CategoryApology)
	if err != nil || n != 1 {
		t.Fatalf("CountDefaults = %d, %v", n, err)
	}
	t1, _ := GetTemplate(ctx, db, "t1")
	t2, _ := GetTemplate(ctx, db, "t2")
	if t1.IsDefault || !t2.IsDefault {
		t.Fatalf("defaults not moved: t1=%v t2=%v", t1.IsDefault, t2.IsDefault)
	}
	if err := MarkDefault(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkDefault missing: want ErrNotFound, got %v", err)
	}
}

func TestIncrementTemplateUsage(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	seedTemplate(t, db, "t1", "b1", domain.CategoryGeneral, false)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := IncrementTemplateUsage(ctx, db, "t1", false, at); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if err := IncrementTemplateUsage(ctx, db, "t1", true, at.Add(time.Hour)); err != nil {
		t.Fatalf("increment scheduled: %v", err)
	}
	got, err := GetTemplate(ctx, db, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalUses != 4 || got.ScheduledUses != 1 {
		t.Fatalf("counters = (%d, %d), want (4, 1)", got.TotalUses, got.ScheduledUses)
	}
	if got.LastUsed == nil || !got.LastUsed.Equal(at.Add(time.Hour)) {
		t.Fatalf("LastUsed = %v", got.LastUsed)
	}
	if err := IncrementTemplateUsage(ctx, db, "missing", false, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListTemplates_AndApplicable(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	mk := func(id string, min, max int, auto bool, uses int64, active, archived bool) {
		tpl := &domain.ResponseTemplate{
			ID: id, BusinessID: "b1", OwnerID: "o", Name: id, Body: "b", Category: domain.CategoryGeneral,
			RatingMin: min, RatingMax: max, AutoApply: auto, TotalUses: uses, IsActive: active, IsArchived: archived,
		}
		if err := CreateTemplate(ctx, db, tpl); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("low", 1, 2, false, 10, true, false)
	mk("mid", 3, 5, false, 7, true, false)
	mk("auto", 1, 5, true, 0, true, false)
	mk("used", 1, 5, false, 20, true, false)
	mk("inactive", 1, 5, true, 99, false, false)
	mk("archived", 1, 5, true, 99, false, true)

	got, err := ListApplicableTemplates(ctx, db, "b1", 4)
	if err != nil {
		t.Fatalf("applicable: %v", err)
	}
	want := []string{"auto", "used", "mid"}
	if len(got) != len(want) {
		t.Fatalf("got %d templates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("pos %d = %s, want %s", i, got[i].ID, want[i])
		}
	}

	all, err := ListTemplates(ctx, db, "b1", TemplateQuery{})
	if err != nil || len(all) != 5 {
		t.Fatalf("ListTemplates = %d, %v", len(all), err)
	}
	withArchived, _ := ListTemplates(ctx, db, "b1", TemplateQuery{IncludeArchived: true})
	if len(withArchived) != 6 {
		t.Fatalf("IncludeArchived = %d", len(withArchived))
	}
	none, _ := ListTemplates(ctx, db, "b1", TemplateQuery{Category: domain.CategoryApology})
	if len(none) != 0 {
		t.Fatalf("category filter = %d", len(none))
	}
}

func TestArchiveSaveAndDeleteTemplate(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	seedTemplate(t, db, "t1", "b1", domain.CategoryThankYou, true)

	if err := ArchiveTemplate(ctx, db, "t1"); err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, _ := GetTemplate(ctx, db, "t1")
	if !got.IsArchived || got.IsActive || got.IsDefault {
		t.Fatalf("archive flags wrong: %+v", got)
	}

	got.Name = "renamed"
	got.Keywords = []string{"thanks"}
	got.Version++
	got.TotalUses = 0
	if err := IncrementTemplateUsage(ctx, db, "t1", true, time.Now()); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := UpdateTemplateContent(ctx, db, got, false); err != nil {
		t.Fatalf("update content: %v", err)
	}
	again, _ := GetTemplate(ctx, db, "t1")
	if again.Name != "renamed" || again.Version != 2 || len(again.Keywords) != 1 {
		t.Fatalf("edit not persisted: %+v", again)
	}
	if again.TotalUses != 1 || again.ScheduledUses != 1 || again.LastUsed == nil {
		t.Fatalf("edit must not touch usage counters: %+v", again)
	}
	missing := *got
	missing.ID = "missing"
	if err := UpdateTemplateContent(ctx, db, &missing, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: want ErrNotFound, got %v", err)
	}

	if err := DeleteTemplate(ctx, db, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteTemplate(ctx, db, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if err := ArchiveTemplate(ctx, db, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("archive missing: want ErrNotFound, got %v", err)
	}
}
