package database

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteDriverName = "sqlite3_foodgram"

var registerSQLite sync.Once

// SQLiteDialector opens dsn through a sqlite3 driver whose LOWER folds
// Unicode letters, so case-insensitive name lookups match Cyrillic names
// the same way they do on PostgreSQL.
func SQLiteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", strings.ToLower, true)
			},
		})
	})
	return gormsqlite.New(gormsqlite.Config{
		DriverName: sqliteDriverName,
		DSN:        dsn,
	})
}
