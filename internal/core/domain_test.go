package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in  string
		out Category
		ok  bool
	}{
		{"Food", Food, true},
		{" travel ", Travel, true},
		{"BILLS", Bills, true},
		{"Shopping", Shopping, true},
		{"others", Others, true},
		{"All", "", false},
		{"", "", false},
		{"Rent", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCategoryOrder(t *testing.T) {
	want := []string{"Food", "Travel", "Bills", "Shopping", "Others"}
	got := CategoryNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected order: %v", got)
	}
	for i, c := range Categories() {
		if c.Index() != i {
			t.Fatalf("%s index=%d, want %d", c, c.Index(), i)
		}
	}
	if Category("Rent").Index() != -1 {
		t.Fatalf("unknown category must have index -1")
	}
}

func TestParseFilter(t *testing.T) {
	for _, in := range []string{"", "all", "All"} {
		f, err := ParseFilter(in)
		if err != nil || f != FilterAll {
			t.Fatalf("%q expected All, got %q (err=%v)", in, f, err)
		}
	}
	f, err := ParseFilter("food")
	if err != nil || f != Filter(Food) {
		t.Fatalf("expected Food filter, got %q (err=%v)", f, err)
	}
	if _, err := ParseFilter("Rent"); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if len(Filters()) != 6 || Filters()[0] != FilterAll {
		t.Fatalf("unexpected filters: %v", Filters())
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{Title: "Coffee", Amount: FromCents(150), Category: Food}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		d     Draft
		field string
		err   error
	}{
		{Draft{Title: "", Amount: FromCents(1), Category: Food}, "title", ErrEmptyTitle},
		{Draft{Title: "   ", Amount: FromCents(1), Category: Food}, "title", ErrEmptyTitle},
		{Draft{Title: strings.Repeat("x", MaxTitleLength+1), Amount: FromCents(1), Category: Food}, "title", ErrTitleTooLong},
		{Draft{Title: "a", Amount: FromCents(0), Category: Food}, "amount", ErrInvalidAmount},
		{Draft{Title: "a", Amount: FromCents(-500), Category: Food}, "amount", ErrInvalidAmount},
		{Draft{Title: "a", Amount: FromCents(1), Category: "Rent"}, "category", ErrInvalidCategory},
	}
	for i, tc := range bads {
		err := tc.d.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d expected ValidationError, got %v", i, err)
		}
		if verr.Field != tc.field || !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %s/%v, got %s/%v", i, tc.field, tc.err, verr.Field, verr.Err)
		}
	}
}

func TestParseDraft(t *testing.T) {
	d, err := ParseDraft("  Taxi ", "300", "travel")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Title != "Taxi" || d.Amount.Cents != 30000 || d.Category != Travel {
		t.Fatalf("unexpected draft: %+v", d)
	}

	if _, err := ParseDraft("X", "-5", "Food"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseDraft("", "50", "Food"); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := ParseDraft("X", "5", "Rent"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	e := Expense{ID: 1, Title: "a", Amount: FromCents(1), Category: Others}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	e.ID = 0
	if err := e.Validate(); err == nil {
		t.Fatalf("expected error for zero id")
	}
}
