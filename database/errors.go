package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// IsBusy reports whether err means the database was busy or locked,
// i.e. the transaction may succeed if retried.
func IsBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}

// IsConstraint reports whether err is a constraint violation, such as
// a duplicate row under a unique index.
func IsConstraint(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}
