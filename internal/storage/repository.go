// Package storage is the SQLite-backed store implementation. Dates persist
// as RFC3339 UTC text, amounts as integer cents.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finflow/internal/core"
	"finflow/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB

	mu        sync.Mutex
	observers []store.Observer
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, type, account, category, subcategory, amount_cents, comment
		 FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) BulkInsert(ctx context.Context, records []core.Transaction) ([]core.Transaction, error) {
	if len(records) == 0 {
		return nil, nil
	}
	for i, tx := range records {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		`INSERT INTO transactions (date, type, account, category, subcategory, amount_cents, comment)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]core.Transaction, len(records))
	ids := make([]int64, len(records))
	for i, tx := range records {
		res, err := stmt.ExecContext(ctx,
			tx.Date.UTC().Format(time.RFC3339), string(tx.Type),
			tx.Account, tx.Category, tx.Subcategory, tx.Amount.Cents, tx.Comment)
		if err != nil {
			return nil, fmt.Errorf("insert record %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		tx.ID = id
		inserted[i] = tx
		ids[i] = id
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(inserted))
	r.notify(store.Event{Op: store.OpInsert, Count: len(inserted), IDs: ids})
	return inserted, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, record core.Transaction) error {
	if err := record.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, type = ?, account = ?, category = ?, subcategory = ?, amount_cents = ?, comment = ?
		 WHERE id = ?`,
		record.Date.UTC().Format(time.RFC3339), string(record.Type),
		record.Account, record.Category, record.Subcategory, record.Amount.Cents, record.Comment,
		record.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", record.ID, store.ErrNotFound)
	}
	r.notify(store.Event{Op: store.OpUpdate, Count: 1, IDs: []int64{record.ID}})
	return nil
}

func (r *SQLiteRepository) BulkDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transactions deleted", "requested", len(ids), "deleted", n)
		r.notify(store.Event{Op: store.OpDelete, Count: int(n), IDs: ids})
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "All transactions cleared", "deleted", n)
	r.notify(store.Event{Op: store.OpClear, Count: int(n)})
	return nil
}

func (r *SQLiteRepository) Subscribe(obs store.Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, obs)
}

func (r *SQLiteRepository) notify(ev store.Event) {
	r.mu.Lock()
	observers := make([]store.Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()
	for _, obs := range observers {
		obs(ev)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		dateStr string
		typeStr string
	)
	if err := s.Scan(&tx.ID, &dateStr, &typeStr, &tx.Account, &tx.Category,
		&tx.Subcategory, &tx.Amount.Cents, &tx.Comment); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	tx.Date = date.UTC()
	tx.Type = core.Type(typeStr)
	return tx, nil
}
