// Package sqldb implements the storage interfaces of the auth and core
// packages on a database/sql database. Placeholders are written in the `?`
// style which both sqlite3 and mysql understand.
package sqldb

import (
	"database/sql"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}
