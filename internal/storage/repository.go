// Package storage is the SQLite TransactionRepository.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/ports"

	_ "modernc.org/sqlite"
)

// timestampLayout keeps a fixed width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const selectColumns = `id, title, description, amount, transaction_type, category, date, created_at, updated_at`

type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *applog.Logger
}

var _ ports.TransactionRepository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := r.now().UTC()
	tx := core.Transaction{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Description: draft.Description,
		Amount:      draft.Amount.Round(core.AmountScale),
		Type:        draft.Type,
		Category:    draft.Category,
		Date:        draft.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Title, tx.Description, tx.Amount.StringFixed(core.AmountScale),
		string(tx.Type), tx.Category, tx.Date.String(),
		now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved to SQLite", applog.NewFields().
		WithTransaction(tx.ID, tx.Title, tx.Amount.String(), tx.Type.String(), tx.Category).
		WithOperation(applog.OpCreate).
		ToSlice()...)

	return tx, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET title = ?, description = ?, amount = ?, transaction_type = ?, category = ?, date = ?, updated_at = ?
		 WHERE id = ?`,
		draft.Title, draft.Description, draft.Amount.Round(core.AmountScale).StringFixed(core.AmountScale),
		string(draft.Type), draft.Category, draft.Date.String(), now.Format(timestampLayout), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	r.logger.InfoContext(ctx, "Transaction deleted from SQLite",
		applog.FieldTransactionID, id,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, filter ports.ListFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		where = append(where, "transaction_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Year != 0 {
		where = append(where, "substr(date, 1, 4) = ?")
		args = append(args, fmt.Sprintf("%04d", filter.Year))
	}
	if filter.Month != 0 {
		where = append(where, "substr(date, 6, 2) = ?")
		args = append(args, fmt.Sprintf("%02d", filter.Month))
	}

	query := `SELECT ` + selectColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx                   core.Transaction
		amount, typ, date    string
		createdAt, updatedAt string
	)
	if err := s.Scan(&tx.ID, &tx.Title, &tx.Description, &amount, &typ, &tx.Category, &date, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}

	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	tx.Type = core.TransactionType(typ)
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, err
	}
	if tx.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}
	if tx.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return tx, nil
}
