package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneytracker/internal/core"
)

// fakeSheets records the calls the client makes against the Sheets REST API.
type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	updated gsheet.ValueRange
	failOn  string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.Contains(call, f.failOn) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","clearedRange":"Resumen!A1:F100"}`))
	case r.Method == http.MethodPut:
		if got := r.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.updated)
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updatedRange":"Resumen!A1:F2","updatedRows":2}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets, sheetName string) *Client {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	c, err := newClient(context.Background(), Config{SpreadsheetID: "sheet-id", SheetName: sheetName}, nil,
		goption.WithEndpoint(ts.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	return c
}

func TestExportMonthlyStats(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake, "")

	ref, err := c.ExportMonthlyStats(context.Background(), []core.MonthlyStat{{
		Month:            "2024-03",
		TotalIncome:      decimal.NewFromInt(2000),
		TotalExpenses:    decimal.NewFromInt(500),
		TransactionCount: 4,
	}})
	if err != nil {
		t.Fatalf("ExportMonthlyStats: %v", err)
	}
	if ref != "Resumen!A1:F2" {
		t.Errorf("ref = %q", ref)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("calls = %v, want clear then update", fake.calls)
	}
	if !strings.HasSuffix(fake.calls[0], "/values/Resumen!A:F:clear") {
		t.Errorf("first call = %q", fake.calls[0])
	}
	if !strings.HasSuffix(fake.calls[1], "/values/Resumen!A1:F2") {
		t.Errorf("second call = %q", fake.calls[1])
	}

	if len(fake.updated.Values) != 2 {
		t.Fatalf("updated values = %v", fake.updated.Values)
	}
	row := fake.updated.Values[1]
	if row[0] != "mar 2024" || row[4] != "1500.00" || row[5] != "4" {
		t.Errorf("row = %v", row)
	}
}

func TestExportMonthlyStatsClearFailure(t *testing.T) {
	fake := &fakeSheets{failOn: ":clear"}
	c := newTestClient(t, fake, "Resumen")

	_, err := c.ExportMonthlyStats(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "clear") {
		t.Fatalf("expected clear error, got %v", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("update must not run after a failed clear: %v", fake.calls)
	}
}

func TestExportMonthlyStatsUninitialized(t *testing.T) {
	c := &Client{}
	if _, err := c.ExportMonthlyStats(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Resumen", "Resumen"},
		{"Resumen 2024", "'Resumen 2024'"},
		{"Juan's", "'Juan''s'"},
	}
	for _, tt := range tests {
		if got := quoteSheet(tt.in); got != tt.want {
			t.Errorf("quoteSheet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	got, err := loadCredentials(Config{CredentialsJSON: `{"type":"service_account"}`, CredentialsFile: "/nope"})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("inline JSON: got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = loadCredentials(Config{CredentialsFile: path})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("file: got %q, %v", got, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	if _, err := loadCredentials(Config{}); err != nil {
		t.Fatalf("GOOGLE_APPLICATION_CREDENTIALS fallback: %v", err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := loadCredentials(Config{}); err == nil {
		t.Fatal("expected error without credentials")
	}
	if _, err := loadCredentials(Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{CredentialsJSON: "{}"}, nil); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
