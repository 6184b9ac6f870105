package services

import (
	"context"
	"errors"
	"testing"
)

func TestListEligible_SummaryAndFilters(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	f.review(t, "r1", "b1", 5, "Alice")
	f.review(t, "r2", "b1", 2, "Bob")
	f.review(t, "r3", "b1", 4, "Cara")
	f.anonymousReview(t, "anon", "b1")
	tpl := f.template(t, "b1", "thanks", "Thanks {{customerName}}")

	if _, err := f.exec.Execute(ctx, BatchRequest{BusinessID: "b1", TemplateID: tpl.ID, Items: items("r1")}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	res, err := f.elig.ListEligible(ctx, "b1", ReviewFilter{Status: "unresponded"})
	if err != nil {
		t.Fatalf("ListEligible: %v", err)
	}
	if res.Summary.TotalRegistered != 3 || res.Summary.Responded != 1 || res.Summary.Unresponded != 2 || res.Summary.Filtered != 2 {
		t.Fatalf("summary = %+v", res.Summary)
	}
	for _, r := range res.Reviews {
		if r.ID == "r1" || r.ID == "anon" {
			t.Fatalf("%s must not be listed as unresponded", r.ID)
		}
	}

	res, _ = f.elig.ListEligible(ctx, "b1", ReviewFilter{MinRating: 4, SortBy: "rating_low"})
	if len(res.Reviews) != 2 || res.Reviews[0].ID != "r3" || res.Reviews[1].ID != "r1" {
		t.Fatalf("min rating sort = %+v", res.Reviews)
	}
	if res.Summary.TotalRegistered != 3 || res.Summary.Filtered != 2 {
		t.Fatalf("summary should ignore filter: %+v", res.Summary)
	}

	res, _ = f.elig.ListEligible(ctx, "b1", ReviewFilter{Limit: 1})
	if res.Summary.Filtered != 1 {
		t.Fatalf("limit: %+v", res.Summary)
	}

	empty, err := f.elig.ListEligible(ctx, "nobody", ReviewFilter{})
	if err != nil || empty.Reviews == nil || len(empty.Reviews) != 0 {
		t.Fatalf("empty result = %+v, %v", empty, err)
	}

	for _, bad := range []ReviewFilter{{Status: "maybe"}, {SortBy: "random"}, {MinRating: 9}, {Limit: -1}} {
		if _, err := f.elig.ListEligible(ctx, "b1", bad); !errors.Is(err, ErrInvalidFilter) {
			t.Fatalf("filter %+v: want ErrInvalidFilter, got %v", bad, err)
		}
	}
}

func TestEligibility_MonotoneAfterResponse(t *testing.T) {
	f := newFixture(t)
	f.business(t, "b1")
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		f.review(t, id, "b1", 4, "Dana")
	}
	tpl := f.template(t, "b1", "thanks", "Thanks {{customerName}}")

	for _, id := range []string{"r2", "r1", "r3"} {
		if _, err := f.exec.Execute(ctx, BatchRequest{BusinessID: "b1", TemplateID: tpl.ID, Items: items(id)}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		res, err := f.elig.ListEligible(ctx, "b1", ReviewFilter{Status: "unresponded"})
		if err != nil {
			t.Fatalf("ListEligible: %v", err)
		}
		for _, r := range res.Reviews {
			if r.HasResponse() {
				t.Fatalf("responded review %s listed as unresponded", r.ID)
			}
			if r.ID == id {
				t.Fatalf("review %s reappeared after response", id)
			}
		}
	}
}
