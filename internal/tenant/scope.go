package tenant

import (
	"database/sql"

	"gorm.io/gorm"
)

func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// Conn returns db bound to tx when tx is set, so repository calls made
// through WithTx join the caller's transaction.
func Conn(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	bound := db.Session(&gorm.Session{NewDB: true})
	bound.Statement.ConnPool = tx
	return bound
}
