package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expensetracker/internal/core"
)

func TestDraftFromForm(t *testing.T) {
	tests := []struct {
		name      string
		form      ExpenseForm
		wantField string
		wantCents int64
	}{
		{"valid", ExpenseForm{"Lunch", "150", "Food"}, "", 15000},
		{"comma decimal", ExpenseForm{"Lunch", "12,50", "food"}, "", 1250},
		{"missing title", ExpenseForm{"", "1", "Food"}, "title", 0},
		{"title too long", ExpenseForm{strings.Repeat("x", 201), "1", "Food"}, "title", 0},
		{"missing amount", ExpenseForm{"Lunch", "", "Food"}, "amount", 0},
		{"negative amount", ExpenseForm{"Lunch", "-3", "Food"}, "amount", 0},
		{"rounds to zero", ExpenseForm{"Lunch", "0.004", "Food"}, "amount", 0},
		{"bad category", ExpenseForm{"Lunch", "1", "Pets"}, "category", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DraftFromForm(tt.form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("DraftFromForm() error = %v", err)
				}
				if d.Amount.Cents != tt.wantCents {
					t.Errorf("cents = %d, want %d", d.Amount.Cents, tt.wantCents)
				}
				return
			}
			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if _, ok := fe[tt.wantField]; !ok {
				t.Errorf("missing error for %q in %v", tt.wantField, fe)
			}
		})
	}
}

func TestValidateFilterForm(t *testing.T) {
	for _, f := range []string{"", "All", "travel", "Others"} {
		if err := ValidateForm(FilterForm{Filter: f}); err != nil {
			t.Errorf("filter %q rejected: %v", f, err)
		}
	}
	if err := ValidateForm(FilterForm{Filter: "Pets"}); err == nil {
		t.Error("filter Pets should be rejected")
	}
}

func TestFieldErrorsMessageOrder(t *testing.T) {
	fe := FieldErrors{"category": "bad", "title": "is required"}
	if got := fe.Error(); got != "title: is required; category: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestParseExpenseID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"1700000000000", 1700000000000, true},
		{"0", 0, false},
		{"-4", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.SetPathValue("id", tt.value)
		got, err := ParseExpenseID(req)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseExpenseID(%q) = %d, %v", tt.value, got, err)
		}
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"title": " Taxi\u0007 ", "amount": 42.5, "category": "Travel"}`
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Fatal("expected JSON body")
	}
	form := parser.ExpenseForm()
	if form != (ExpenseForm{Title: "Taxi", Amount: "42.5", Category: "Travel"}) {
		t.Errorf("ExpenseForm() = %+v", form)
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("title=Rent&amount=1000&category=Bills"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("form body reported as JSON")
	}
	if parser.Get("category") != string(core.Bills) || parser.Get("missing") != "" {
		t.Errorf("unexpected values %+v", parser.ExpenseForm())
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	if err := parser.Parse(); err == nil {
		t.Fatal("second Parse() should return the same error")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
