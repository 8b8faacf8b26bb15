package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/ports"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func draft(title string, typ core.TransactionType, category, amount string, date core.Date) core.TransactionDraft {
	return core.TransactionDraft{
		Title:    title,
		Amount:   decimal.RequireFromString(amount),
		Type:     typ,
		Category: category,
		Date:     date,
	}
}

func TestSQLiteRepository_CreateGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draft("Sueldo", core.Income, "salary", "1500000.005", core.NewDate(2024, 3, 1)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() returned empty id")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("1500000.01")) {
		t.Errorf("Amount = %s, want 1500000.01", got.Amount)
	}
	if got.Date.String() != "2024-03-01" || got.Type != core.Income || got.Category != "salary" {
		t.Errorf("unexpected transaction %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestSQLiteRepository_LogsThroughComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Format: "json", Output: &buf})
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "logged.db"), logger)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	created, err := repo.Create(ctx, draft("Arriendo", core.Expense, "rent", "400", core.NewDate(2024, 1, 10)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"component":"storage"`) {
			t.Errorf("missing storage component: %s", line)
		}
		if !strings.Contains(line, `"transaction_id":"`+created.ID+`"`) {
			t.Errorf("missing transaction id: %s", line)
		}
	}
}

func TestSQLiteRepository_CreateRejectsInvalidDraft(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Create(context.Background(), draft("Sueldo", core.Income, "food", "10", core.NewDate(2024, 3, 1)))
	if !errors.Is(err, core.ErrCategoryMismatch) {
		t.Errorf("Create() error = %v, want ErrCategoryMismatch", err)
	}
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Update(ctx, "missing", draft("x", core.Expense, "food", "1", core.NewDate(2024, 1, 1))); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_UpdateDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.Create(ctx, draft("Almuerzo", core.Expense, "food", "12.50", core.NewDate(2024, 1, 10)))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := repo.Update(ctx, tx.ID, draft("Cena", core.Expense, "entertainment", "30", core.NewDate(2024, 1, 11)))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Cena" || updated.Category != "entertainment" || updated.Date.String() != "2024-01-11" {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := repo.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
}

func TestSQLiteRepository_ListOrderAndFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	seed := []core.TransactionDraft{
		draft("Sueldo enero", core.Income, "salary", "1000", core.NewDate(2024, 1, 1)),
		draft("Almuerzo", core.Expense, "food", "20", core.NewDate(2024, 2, 3)),
		draft("Cine", core.Expense, "entertainment", "15", core.NewDate(2024, 2, 3)),
		draft("Sueldo febrero", core.Income, "salary", "1000", core.NewDate(2024, 2, 1)),
	}
	for _, d := range seed {
		if _, err := repo.Create(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(ctx, ports.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	wantTitles := []string{"Cine", "Almuerzo", "Sueldo febrero", "Sueldo enero"}
	if len(all) != len(wantTitles) {
		t.Fatalf("List() len = %d, want %d", len(all), len(wantTitles))
	}
	for i, want := range wantTitles {
		if all[i].Title != want {
			t.Errorf("List()[%d] = %q, want %q", i, all[i].Title, want)
		}
	}

	tests := []struct {
		name   string
		filter ports.ListFilter
		want   int
	}{
		{"by type", ports.ListFilter{Type: core.Expense}, 2},
		{"by category", ports.ListFilter{Category: "salary"}, 2},
		{"by month", ports.ListFilter{Year: 2024, Month: 2}, 3},
		{"by year only", ports.ListFilter{Year: 2023}, 0},
		{"combined", ports.ListFilter{Type: core.Income, Year: 2024, Month: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List() len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
