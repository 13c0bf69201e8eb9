package duckdb

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// WithTransaction makes stores called with the returned context run their
// statements inside tx.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// InTransaction runs fn inside a transaction carried by its context, joining
// the one already in ctx if there is one. A new transaction is committed when
// fn succeeds and rolled back otherwise.
func InTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if GetTransaction(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(WithTransaction(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Prepare prepares query on the transaction in ctx, or on db without one.
func Prepare(ctx context.Context, db *sql.DB, query string) (*sql.Stmt, error) {
	if tx := GetTransaction(ctx); tx != nil {
		return tx.PrepareContext(ctx, query)
	}
	return db.PrepareContext(ctx, query)
}

// Exec runs a statement on the transaction in ctx, or on db without one.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	if tx := GetTransaction(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return db.ExecContext(ctx, query, args...)
}
