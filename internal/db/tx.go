package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
func withTx[T any](ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) (T, error)) (_ T, txErr error) {
	var zero T

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if txErr != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
