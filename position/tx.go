package position

import (
	"context"
	"database/sql"
	"time"

	"github.com/formdeck/formdeck/database"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
)

const txRetries = 3

// InTx runs fn inside a transaction and retries it a bounded number of
// times when SQLite reports the database busy or locked. After the
// last attempt the failure surfaces as a model.ConcurrencyError.
// Everything that mutates positions goes through here, which makes
// append/remove/reorder on the same scope mutually exclusive.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt <= txRetries; attempt++ {
		if attempt > 0 {
			log.Debugf("position.tx: retry %d after %s", attempt, err)
			select {
			case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = runTx(ctx, db, fn)
		if !database.IsBusy(err) {
			return err
		}
	}
	return model.ConcurrencyError{Cause: err}
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
