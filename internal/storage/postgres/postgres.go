// Package postgres is the PostgreSQL TransactionRepository.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	applog "moneytracker/internal/log"
	"moneytracker/internal/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const selectColumns = `id::text, title, description, amount::text, transaction_type, category, date, created_at, updated_at`

type Repository struct {
	pool   *pgxpool.Pool
	logger *applog.Logger
}

var _ ports.TransactionRepository = (*Repository)(nil)

// Connect opens a pool, checks it and applies pending migrations.
func Connect(ctx context.Context, databaseURL string, logger *applog.Logger) (*Repository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := runMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repository{pool: pool, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("create pgx migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Create(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	query := `
		INSERT INTO transactions (id, title, description, amount, transaction_type, category, date)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING ` + selectColumns
	row := r.pool.QueryRow(ctx, query,
		uuid.New().String(), draft.Title, draft.Description,
		draft.Amount.Round(core.AmountScale).StringFixed(core.AmountScale),
		string(draft.Type), draft.Category, draft.Date.Time)
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Transaction saved to Postgres",
		applog.FieldTransactionID, tx.ID,
		applog.FieldAmount, tx.Amount.String(),
		applog.FieldOperation, applog.OpCreate)
	return tx, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id = $1`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *Repository) Update(ctx context.Context, id string, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	query := `
		UPDATE transactions
		SET title = $2, description = $3, amount = $4::numeric, transaction_type = $5,
		    category = $6, date = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + selectColumns
	row := r.pool.QueryRow(ctx, query,
		id, draft.Title, draft.Description,
		draft.Amount.Round(core.AmountScale).StringFixed(core.AmountScale),
		string(draft.Type), draft.Category, draft.Date.Time)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]core.Transaction, error) {
	where, args := listConditions(filter)
	query := `SELECT ` + selectColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
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

// listConditions builds the WHERE terms for filter with $n placeholders.
func listConditions(filter ports.ListFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(expr string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(expr, len(args)))
	}
	if filter.Type != "" {
		add("transaction_type = $%d", string(filter.Type))
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Year != 0 {
		add("EXTRACT(YEAR FROM date) = $%d", filter.Year)
	}
	if filter.Month != 0 {
		add("EXTRACT(MONTH FROM date) = $%d", filter.Month)
	}
	return where, args
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		tx          core.Transaction
		amount, typ string
		date        time.Time
	)
	if err := row.Scan(&tx.ID, &tx.Title, &tx.Description, &amount, &typ, &tx.Category, &date, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	tx.Type = core.TransactionType(typ)
	tx.Date = core.DateOf(date)
	return tx, nil
}
