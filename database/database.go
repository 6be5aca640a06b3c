package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/formdeck/formdeck/config"
	_ "github.com/mattn/go-sqlite3"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(cfg.DBUrl))
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}

// dsn enables foreign keys and a busy timeout on every pooled
// connection: a plain `PRAGMA foreign_keys = ON` would only reach the
// connection it ran on.
func dsn(url string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(url, "?") {
		return url + "&" + params
	}
	return url + "?" + params
}
