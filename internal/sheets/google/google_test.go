package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

type fakeSheets struct {
	mu       sync.Mutex
	titles   []string
	calls    []string
	written  [][]any
	addedTab string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-id"):
		f.calls = append(f.calls, "get")
		var sheets []map[string]any
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Requests) == 1 {
			f.addedTab = req.Requests[0].AddSheet.Properties.Title
		}
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			http.Error(w, `{"error":{"code":400,"message":"bad option"}}`, http.StatusBadRequest)
			return
		}
		var vr struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		SheetName:     "Expenses",
		Logger:        log.Nop(),
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestMirrorWritesLayout(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Expenses"}}
	c := newTestClient(t, fake)

	records := []core.Expense{
		{ID: 1700000000000, Title: "Coffee", Amount: core.FromCents(15000), Category: core.Food},
		{ID: 1700000000001, Title: "Taxi", Amount: core.FromCents(30000), Category: core.Travel},
	}
	if err := c.Mirror(context.Background(), records); err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}

	if got := strings.Join(fake.calls, ","); got != "get,clear,update" {
		t.Errorf("unexpected call sequence %s", got)
	}
	if len(fake.written) != 1+2+2+5+1 {
		t.Fatalf("unexpected row count %d", len(fake.written))
	}
	if fake.written[0][0] != "Title" {
		t.Errorf("unexpected header %v", fake.written[0])
	}
	if fake.written[1][0] != "Coffee" || fake.written[1][1] != float64(150) || fake.written[1][3] != "1700000000000" {
		t.Errorf("unexpected first row %v", fake.written[1])
	}
	last := fake.written[len(fake.written)-1]
	if last[0] != "Total" || last[1] != float64(450) {
		t.Errorf("unexpected total row %v", last)
	}
}

func TestMirrorCreatesMissingSheet(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	c := newTestClient(t, fake)

	if err := c.Mirror(context.Background(), nil); err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if fake.addedTab != "Expenses" {
		t.Errorf("expected Expenses tab to be added, got %q", fake.addedTab)
	}
	if got := strings.Join(fake.calls, ","); got != "get,add,clear,update" {
		t.Errorf("unexpected call sequence %s", got)
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMirrorWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "x"}
	if err := c.Mirror(context.Background(), nil); err == nil {
		t.Error("expected error without service")
	}
}

func TestQuoteSheet(t *testing.T) {
	cases := map[string]string{
		"Expenses":    "'Expenses'",
		"Bob's sheet": "'Bob''s sheet'",
	}
	for in, want := range cases {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}
