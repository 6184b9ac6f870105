package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

func TestTemplateCreate_ValidationAndDefaults(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()

	cases := []struct {
		name string
		in   TemplateInput
		want error
	}{
		{"empty body", TemplateInput{Name: "n", Body: "  ", Category: domain.CategoryGeneral}, ErrEmptyTemplateBody},
		{"empty name", TemplateInput{Body: "b", Category: domain.CategoryGeneral}, ErrEmptyTemplateName},
		{"bad category", TemplateInput{Name: "n", Body: "b", Category: "vip"}, ErrInvalidCategory},
		{"min > max", TemplateInput{Name: "n", Body: "b", Category: domain.CategoryGeneral, RatingMin: 4, RatingMax: 2}, ErrInvalidRatingRange},
		{"max > 5", TemplateInput{Name: "n", Body: "b", Category: domain.CategoryGeneral, RatingMin: 1, RatingMax: 6}, ErrInvalidRatingRange},
		{"unnamed variable", TemplateInput{Name: "n", Body: "b", Category: domain.CategoryGeneral, Variables: []domain.TemplateVariable{{Name: " "}}}, ErrInvalidVariable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.templates.Create(ctx, "b1", ownerID, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := f.templates.Create(ctx, "b1", "intruder", TemplateInput{Name: "n", Body: "b", Category: domain.CategoryGeneral}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := f.templates.Create(ctx, "nope", ownerID, TemplateInput{Name: "n", Body: "b", Category: domain.CategoryGeneral}); !errors.Is(err, ErrBusinessNotFound) {
		t.Fatalf("want ErrBusinessNotFound, got %v", err)
	}

	tpl, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{
		Name:     "Thanks",
		Body:     "Hi {{customerName}}, thank you so much for visiting our lovely cafe! Thank you!",
		Category: domain.CategoryThankYou,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.RatingMin != 1 || tpl.RatingMax != 5 || !tpl.IsActive || tpl.Version != 1 {
		t.Fatalf("defaults not applied: %+v", tpl)
	}
	want := []string{"thank", "much", "visiting", "lovely", "cafe"}
	if !reflect.DeepEqual(tpl.Keywords, want) {
		t.Fatalf("keywords = %v, want %v", tpl.Keywords, want)
	}

	explicit, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{
		Name: "Slow", Body: "Sorry", Category: domain.CategoryApology, Keywords: []string{" Slow ", "WAIT", "slow"},
	})
	if err != nil {
		t.Fatalf("create explicit: %v", err)
	}
	if !reflect.DeepEqual(explicit.Keywords, []string{"slow", "wait"}) {
		t.Fatalf("explicit keywords = %v", explicit.Keywords)
	}
}

func TestTemplateCreate_SecondDefaultFails(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	in := TemplateInput{Name: "A", Body: "Thanks!", Category: domain.CategoryPositive, IsDefault: true}

	if _, err := f.templates.Create(ctx, "b1", ownerID, in); err != nil {
		t.Fatalf("first default: %v", err)
	}
	in.Name = "B"
	if _, err := f.templates.Create(ctx, "b1", ownerID, in); !errors.Is(err, ErrDuplicateDefaultTemplate) {
		t.Fatalf("want ErrDuplicateDefaultTemplate, got %v", err)
	}
	in.Category = domain.CategoryNeutral
	if _, err := f.templates.Create(ctx, "b1", ownerID, in); err != nil {
		t.Fatalf("default in another category: %v", err)
	}
}

func TestTemplateSetDefault_ConcurrentKeepsOneDefault(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()

	var ids []string
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		tpl, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{Name: n, Body: "Thanks " + n, Category: domain.CategoryPositive})
		if err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
		ids = append(ids, tpl.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.templates.SetDefault(ctx, id, ownerID); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("SetDefault: %v", err)
	}

	n, err := repo.CountDefaults(ctx, f.db, "b1", domain.CategoryPositive)
	if err != nil || n != 1 {
		t.Fatalf("defaults = %d, %v; want exactly 1", n, err)
	}

	// Moving the default again leaves one default on the new target.
	if _, err := f.templates.SetDefault(ctx, ids[0], ownerID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if !mustTemplate(t, f.db, ids[0]).IsDefault {
		t.Fatalf("target should be default")
	}
	n, _ = repo.CountDefaults(ctx, f.db, "b1", domain.CategoryPositive)
	if n != 1 {
		t.Fatalf("defaults = %d after move", n)
	}

	if _, err := f.templates.SetDefault(ctx, ids[1], "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := f.templates.SetDefault(ctx, "missing", ownerID); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("want ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateFindSuggested(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	f.business(t, "b2")
	ctx := context.Background()

	mk := func(biz, name string, min, max int, kw []string, auto bool) *domain.ResponseTemplate {
		tpl, err := f.templates.Create(ctx, biz, ownerID, TemplateInput{
			Name: name, Body: "Body " + name, Category: domain.CategoryGeneral,
			RatingMin: min, RatingMax: max, Keywords: kw, AutoApply: auto,
		})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		return tpl
	}
	slow := mk("b1", "slow", 1, 3, []string{"slow", "service"}, false)
	wait := mk("b1", "wait", 1, 3, []string{"waiting", "slow"}, true)
	food := mk("b1", "food", 1, 3, []string{"food"}, false)
	mk("b1", "happy", 4, 5, []string{"slow"}, true)
	mk("b2", "other", 1, 5, []string{"slow"}, true)
	archived := mk("b1", "archived", 1, 3, []string{"slow"}, true)
	if err := repo.ArchiveTemplate(ctx, f.db, archived.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = f.templates.IncrementUsage(ctx, slow.ID, false)
	}

	got, err := f.templates.FindSuggested(ctx, "b1", 2, "The SERVICE was slow!")
	if err != nil {
		t.Fatalf("FindSuggested: %v", err)
	}
	if len(got) != 2 || got[0].ID != wait.ID || got[1].ID != slow.ID {
		t.Fatalf("keyword matches = %+v", names(got))
	}

	// No keyword overlap: every rating match, auto-apply then usage.
	got, _ = f.templates.FindSuggested(ctx, "b1", 2, "lovely ambience")
	if len(got) != 3 || got[0].ID != wait.ID || got[1].ID != slow.ID || got[2].ID != food.ID {
		t.Fatalf("fallback = %v", names(got))
	}

	got, _ = f.templates.FindSuggested(ctx, "b1", 2, "")
	if len(got) != 3 {
		t.Fatalf("no text = %v", names(got))
	}

	// Filler words never narrow the suggestions.
	mk("b1", "filler", 1, 3, []string{"really"}, false)
	got, _ = f.templates.FindSuggested(ctx, "b1", 2, "Really, really!")
	if len(got) != 4 || got[0].ID != wait.ID || got[1].ID != slow.ID {
		t.Fatalf("stopword query = %v", names(got))
	}

	for i := 0; i < 6; i++ {
		mk("b1", "extra", 1, 5, nil, false)
	}
	got, _ = f.templates.FindSuggested(ctx, "b1", 2, "")
	if len(got) != MaxSuggestions {
		t.Fatalf("cap = %d, want %d", len(got), MaxSuggestions)
	}

	if _, err := f.templates.FindSuggested(ctx, "b1", 0, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("want ErrInvalidRating, got %v", err)
	}
}

func names(ts []domain.ResponseTemplate) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func TestTemplateUpdate_VersionAndKeywords(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{Name: "A", Body: "Thanks for visiting", Category: domain.CategoryPositive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	body := "We apologise for the delay"
	up, err := f.templates.Update(ctx, tpl.ID, ownerID, TemplatePatch{Body: &body})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.Version != 2 || !reflect.DeepEqual(up.Keywords, []string{"apologise", "delay"}) {
		t.Fatalf("update result = version %d keywords %v", up.Version, up.Keywords)
	}

	bad := 9
	if _, err := f.templates.Update(ctx, tpl.ID, ownerID, TemplatePatch{RatingMax: &bad}); !errors.Is(err, ErrInvalidRatingRange) {
		t.Fatalf("want ErrInvalidRatingRange, got %v", err)
	}
	if mustTemplate(t, f.db, tpl.ID).Version != 2 {
		t.Fatalf("failed update must not persist")
	}

	if _, err := f.templates.Update(ctx, tpl.ID, "intruder", TemplatePatch{Body: &body}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestTemplateUpdate_KeepsConcurrentUsage(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{
		Name: "thanks", Body: "Thanks {{customerName}}", Category: domain.CategoryThankYou, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A scheduled response commits after Update has read the template but
	// before its write reaches the database.
	bumped := false
	err = f.db.Callback().Update().Before("gorm:update").Register("test:concurrent_use", func(tx *gorm.DB) {
		if bumped || tx.Statement.Table != "response_templates" {
			return
		}
		bumped = true
		if err := repo.IncrementTemplateUsage(ctx, tx.Session(&gorm.Session{NewDB: true}), tpl.ID, true, baseTime); err != nil {
			t.Errorf("increment: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	name := "renamed"
	up, err := f.templates.Update(ctx, tpl.ID, ownerID, TemplatePatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !bumped {
		t.Fatalf("usage increment never ran")
	}
	got := mustTemplate(t, f.db, tpl.ID)
	if got.Name != "renamed" || got.TotalUses != 1 || got.ScheduledUses != 1 || got.LastUsed == nil {
		t.Fatalf("stored = name %q uses (%d, %d)", got.Name, got.TotalUses, got.ScheduledUses)
	}
	if up.TotalUses != 1 || !up.IsDefault {
		t.Fatalf("returned = uses %d default %v", up.TotalUses, up.IsDefault)
	}

	off := false
	if _, err := f.templates.Update(ctx, tpl.ID, ownerID, TemplatePatch{IsActive: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got := mustTemplate(t, f.db, tpl.ID); got.IsDefault || got.IsActive || got.TotalUses != 1 {
		t.Fatalf("deactivated = %+v", got)
	}
}

func TestTemplateUpdate_CategoryChangeKeepsDefaultUnique(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	if _, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{Name: "neg", Body: "Sorry", Category: domain.CategoryNegative, IsDefault: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	pos, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{Name: "pos", Body: "Yay", Category: domain.CategoryPositive, IsDefault: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cat := domain.CategoryNegative
	if _, err := f.templates.Update(ctx, pos.ID, ownerID, TemplatePatch{Category: &cat}); !errors.Is(err, ErrDuplicateDefaultTemplate) {
		t.Fatalf("want ErrDuplicateDefaultTemplate, got %v", err)
	}
}

func TestTemplateRemove_DeleteOrArchive(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()

	unused := f.template(t, "b1", "unused", "Hello")
	archived, err := f.templates.Remove(ctx, unused.ID, ownerID)
	if err != nil || archived {
		t.Fatalf("remove unused = %v, %v; want hard delete", archived, err)
	}
	if _, err := repo.GetTemplate(ctx, f.db, unused.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("unused template should be gone: %v", err)
	}

	used := f.template(t, "b1", "used", "Hello")
	if err := f.templates.IncrementUsage(ctx, used.ID, false); err != nil {
		t.Fatalf("increment: %v", err)
	}
	archived, err = f.templates.Remove(ctx, used.ID, ownerID)
	if err != nil || !archived {
		t.Fatalf("remove used = %v, %v; want archive", archived, err)
	}
	got := mustTemplate(t, f.db, used.ID)
	if !got.IsArchived || got.IsActive {
		t.Fatalf("archive flags: %+v", got)
	}
	if _, err := f.templates.Update(ctx, used.ID, ownerID, TemplatePatch{}); !errors.Is(err, ErrTemplateArchived) {
		t.Fatalf("edit archived: want ErrTemplateArchived, got %v", err)
	}
	if _, err := f.templates.SetDefault(ctx, used.ID, ownerID); !errors.Is(err, ErrTemplateArchived) {
		t.Fatalf("default archived: want ErrTemplateArchived, got %v", err)
	}
}

func TestTemplateVariables(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "b1", ownerID, TemplateInput{
		Name:     "vars",
		Body:     "Hi {{customerName}}, about {{issue}}. {{customerName}} - {{businessName}}",
		Category: domain.CategoryComplaint,
		Variables: []domain.TemplateVariable{
			{Name: "issue", Description: "what went wrong", Required: true},
			{Name: "coupon", DefaultValue: "SAVE10"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	vars, err := f.templates.Variables(ctx, tpl.ID, ownerID)
	if err != nil {
		t.Fatalf("variables: %v", err)
	}
	var got []string
	for _, v := range vars {
		got = append(got, v.Name)
	}
	if !reflect.DeepEqual(got, []string{"customerName", "issue", "businessName", "coupon"}) {
		t.Fatalf("variables = %v", got)
	}
	if !vars[1].Required || vars[0].Placeholder != "{{customerName}}" {
		t.Fatalf("metadata not merged: %+v", vars)
	}
}

func TestTemplateList(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	f.template(t, "b1", "one", "x")
	f.template(t, "b1", "two", "y")

	got, err := f.templates.List(ctx, "b1", ownerID, repo.TemplateQuery{})
	if err != nil || len(got) != 2 {
		t.Fatalf("list = %d, %v", len(got), err)
	}
	if _, err := f.templates.List(ctx, "b1", ownerID, repo.TemplateQuery{Category: "bogus"}); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("want ErrInvalidCategory, got %v", err)
	}
	if _, err := f.templates.List(ctx, "b1", "intruder", repo.TemplateQuery{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}
