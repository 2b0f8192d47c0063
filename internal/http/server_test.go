package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"expensetracker/internal/core"
	"expensetracker/internal/kv/memory"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

func newTestServer(t *testing.T, opts ...store.Option) (*Server, *store.Store) {
	t.Helper()
	opts = append(opts, store.WithLogger(log.Nop()))
	st := store.Open(context.Background(), memory.New(), opts...)
	srv := NewServer(":0", st, Options{Logger: log.Nop(), Currency: "₹"})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(t *testing.T, srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func addForm(title, amount, category string) url.Values {
	return url.Values{"title": {title}, "amount": {amount}, "category": {category}}
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Add Expense", "Total: ₹0.00", "No expenses"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing security headers")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := do(t, srv, http.MethodGet, "/missing", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
}

func TestReadyReportsStorageFailure(t *testing.T) {
	st := store.Open(context.Background(), memory.New(), store.WithLogger(log.Nop()))
	srv := NewServer(":0", st, Options{
		Logger: log.Nop(),
		Ready:  func(context.Context) error { return errors.New("db down") },
	})
	defer srv.Shutdown(context.Background())

	rr := do(t, srv, http.MethodGet, "/readyz", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "db down") {
		t.Errorf("readyz body = %s", rr.Body.String())
	}
}

func TestSubmitValidationAndSuccess(t *testing.T) {
	srv, st := newTestServer(t)

	if rr := do(t, srv, http.MethodGet, "/expenses", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	tests := []struct {
		name string
		form url.Values
	}{
		{"invalid amount", addForm("Lunch", "abc", "Food")},
		{"zero amount", addForm("Lunch", "0", "Food")},
		{"missing title", addForm("  ", "10", "Food")},
		{"unknown category", addForm("Lunch", "10", "Pets")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/expenses", tt.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), `class="error"`) {
				t.Errorf("expected error message in body")
			}
		})
	}
	if len(st.Records()) != 0 {
		t.Fatalf("invalid submissions must not add records")
	}

	rr := do(t, srv, http.MethodPost, "/expenses", addForm("Lunch", "abc", "Food"))
	if !strings.Contains(rr.Body.String(), `value="Lunch"`) {
		t.Errorf("422 page should keep the typed title")
	}

	rr = do(t, srv, http.MethodPost, "/expenses", addForm("Lunch", "150", "Food"))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	recs := st.Records()
	if len(recs) != 1 || recs[0].Amount.Cents != 15000 || recs[0].Category != core.Food {
		t.Fatalf("unexpected records %+v", recs)
	}

	rr = do(t, srv, http.MethodGet, "/", nil)
	if !strings.Contains(rr.Body.String(), "₹150.00") {
		t.Errorf("index should show the new expense")
	}
}

func TestEditFlow(t *testing.T) {
	srv, st := newTestServer(t)
	e, err := st.Add(context.Background(), core.Draft{Title: "Taxi", Amount: core.FromCents(3000), Category: core.Travel})
	if err != nil {
		t.Fatal(err)
	}
	target := "/expenses/" + itoa(e.ID)

	if rr := do(t, srv, http.MethodPost, "/expenses/999/edit", url.Values{}); rr.Code != http.StatusNotFound {
		t.Fatalf("edit unknown id status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/expenses/abc/edit", url.Values{}); rr.Code != http.StatusBadRequest {
		t.Fatalf("edit bad id status=%d", rr.Code)
	}

	if rr := do(t, srv, http.MethodPost, target+"/edit", url.Values{}); rr.Code != http.StatusSeeOther {
		t.Fatalf("edit status=%d", rr.Code)
	}
	rr := do(t, srv, http.MethodGet, "/", nil)
	if !strings.Contains(rr.Body.String(), "Edit Expense") || !strings.Contains(rr.Body.String(), `value="Taxi"`) {
		t.Fatalf("form should be pre-filled while editing")
	}

	do(t, srv, http.MethodPost, "/expenses", addForm("Taxi home", "35.5", "Travel"))
	got, _ := st.Get(e.ID)
	if got.Title != "Taxi home" || got.Amount.Cents != 3550 {
		t.Fatalf("update not applied: %+v", got)
	}
	if _, editing := st.EditTarget(); editing {
		t.Fatal("edit target should be cleared after update")
	}

	do(t, srv, http.MethodPost, target+"/edit", url.Values{})
	do(t, srv, http.MethodPost, "/edit/cancel", url.Values{})
	if _, editing := st.EditTarget(); editing {
		t.Fatal("cancel should clear the edit target")
	}
}

func TestEditDisabled(t *testing.T) {
	srv, st := newTestServer(t, store.WithoutEditing())
	e, _ := st.Add(context.Background(), core.Draft{Title: "Rent", Amount: core.FromCents(100000), Category: core.Bills})

	rr := do(t, srv, http.MethodPost, "/expenses/"+itoa(e.ID)+"/edit", url.Values{})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if strings.Contains(do(t, srv, http.MethodGet, "/", nil).Body.String(), "/edit\"") {
		t.Error("edit buttons should be hidden")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	srv, st := newTestServer(t)
	e, _ := st.Add(context.Background(), core.Draft{Title: "Shoes", Amount: core.FromCents(4999), Category: core.Shopping})
	target := "/expenses/" + itoa(e.ID) + "/delete"

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, target, url.Values{}); rr.Code != http.StatusSeeOther {
			t.Fatalf("delete %d status=%d", i, rr.Code)
		}
	}
	if len(st.Records()) != 0 {
		t.Fatal("record should be gone")
	}

	rr := do(t, srv, http.MethodDelete, "/api/expenses/12345", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("api delete status=%d", rr.Code)
	}
}

func TestFilterAndAPI(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	st.Add(ctx, core.Draft{Title: "Lunch", Amount: core.FromCents(15000), Category: core.Food})
	st.Add(ctx, core.Draft{Title: "Bus", Amount: core.FromCents(4000), Category: core.Travel})

	if rr := do(t, srv, http.MethodPost, "/filter", url.Values{"filter": {"Pets"}}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/filter", url.Values{"filter": {"Travel"}}); rr.Code != http.StatusSeeOther {
		t.Fatalf("filter status=%d", rr.Code)
	}
	if st.Filter() != core.Filter(core.Travel) {
		t.Fatalf("filter = %s", st.Filter())
	}

	body := do(t, srv, http.MethodGet, "/", nil).Body.String()
	if strings.Contains(body, ">Lunch<") || !strings.Contains(body, ">Bus<") {
		t.Errorf("list should only show Travel records")
	}
	if !strings.Contains(body, "Total: ₹190.00") {
		t.Errorf("total must ignore the filter")
	}

	var list struct {
		Filter   string        `json:"filter"`
		Expenses []expenseJSON `json:"expenses"`
		Total    string        `json:"total"`
	}
	rr := do(t, srv, http.MethodGet, "/api/expenses?filter=food", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Filter != "Food" || len(list.Expenses) != 1 || list.Expenses[0].Title != "Lunch" || list.Total != "190" {
		t.Errorf("unexpected list %+v", list)
	}
	if rr := do(t, srv, http.MethodGet, "/api/expenses?filter=nope", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("api bad filter status=%d", rr.Code)
	}

	var sum summaryJSON
	rr = do(t, srv, http.MethodGet, "/api/summary", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.TotalCents != 19000 || len(sum.ByCategory) != 5 || sum.ByCategory[1].Cents != 4000 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestSubmitJSON(t *testing.T) {
	srv, st := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"title":"Coffee","amount":3.5,"category":"food"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got expenseJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Cents != 350 || got.Category != "Food" || len(st.Records()) != 1 {
		t.Errorf("unexpected result %+v", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"title":"","amount":-1,"category":"food"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), `"title"`) {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChartIsCachedPerVersion(t *testing.T) {
	srv, st := newTestServer(t)
	st.Add(context.Background(), core.Draft{Title: "Lunch", Amount: core.FromCents(15000), Category: core.Food})

	rr := do(t, srv, http.MethodGet, "/chart.svg", nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("chart status=%d type=%q", rr.Code, rr.Header().Get("Content-Type"))
	}
	do(t, srv, http.MethodGet, "/chart.svg", nil)
	if hits, _ := srv.charts.Cache().Stats(); hits < 1 {
		t.Errorf("second request should hit the cache")
	}

	rr = do(t, srv, http.MethodGet, "/chart.png", nil)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png status=%d", rr.Code)
	}
}

func TestPostRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	last := 0
	for i := 0; i < 61; i++ {
		last = do(t, srv, http.MethodPost, "/edit/cancel", url.Values{}).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("61st POST status=%d, want 429", last)
	}
	if rr := do(t, srv, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Fatalf("GET should not be limited, got %d", rr.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
