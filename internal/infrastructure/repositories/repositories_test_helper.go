package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		external_principal_id TEXT UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAPIKeyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_keys (
		key_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME,
		last_used_at DATETIME,
		UNIQUE (user_id, name)
	);`)
}

func createContextTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE shared_context (
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		PRIMARY KEY (user_id, key)
	);`)
	mustExec(t, db, `CREATE TABLE context_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		content TEXT NOT NULL,
		action TEXT NOT NULL,
		changed_at DATETIME
	);`)
}

func createAdminAuditTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE admin_audit_log (
		id TEXT PRIMARY KEY,
		admin_user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		target_user_id TEXT,
		details TEXT,
		created_at DATETIME
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createAPIKeyTable(t, db)
	createContextTables(t, db)
	createAdminAuditTable(t, db)
}
