// Package sqlite SQLite 数据库驱动
//
// 提供 SQLite 连接管理、方言实现和自动 Schema 迁移。
// 适用于开发、测试和轻量级部署场景。
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"afro-class/internal/shared/storage/dbutil"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect SQLite 方言实现
type Dialect struct{}

var _ dbutil.Dialect = (*Dialect)(nil)

func (d *Dialect) DriverType() dbutil.DriverType {
	return dbutil.DriverSQLite
}

func (d *Dialect) Rebind(query string) string {
	return dbutil.StripPgCasts(dbutil.RebindToQuestion(query))
}

func (d *Dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func (d *Dialect) AutoMigrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Open 创建 SQLite 数据库连接
// dsn 示例: "file:afro.db?cache=shared&mode=rwc" 或 ":memory:"
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// 内存库每个连接都是独立数据库，只能保留一个连接
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// SQLite 优化设置
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return db, nil
}

// NewDialect 创建 SQLite 方言
func NewDialect() *Dialect {
	return &Dialect{}
}

// schema SQLite 完整建表语句（与 PostgreSQL 驱动保持一致）
const schema = `
-- students
CREATE TABLE IF NOT EXISTS students (
    id VARCHAR(24) PRIMARY KEY,
    email VARCHAR(254) NOT NULL UNIQUE,
    user_name VARCHAR(64) NOT NULL UNIQUE,
    name VARCHAR(200) NOT NULL,
    gender VARCHAR(16) NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    department TEXT NOT NULL DEFAULT '',
    nationality TEXT NOT NULL DEFAULT '',
    avatar VARCHAR(24) NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    reset_token TEXT NOT NULL DEFAULT '',
    grade REAL,
    subjects TEXT,
    created_at DATETIME DEFAULT (datetime('now')),
    updated_at DATETIME DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_students_created_at ON students(created_at);

-- teachers
CREATE TABLE IF NOT EXISTS teachers (
    id VARCHAR(24) PRIMARY KEY,
    email VARCHAR(254) NOT NULL UNIQUE,
    user_name VARCHAR(64) NOT NULL UNIQUE,
    name VARCHAR(200) NOT NULL,
    gender VARCHAR(16) NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    department TEXT NOT NULL DEFAULT '',
    nationality TEXT NOT NULL DEFAULT '',
    avatar VARCHAR(24) NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    reset_token TEXT NOT NULL DEFAULT '',
    grade REAL,
    subjects TEXT,
    created_at DATETIME DEFAULT (datetime('now')),
    updated_at DATETIME DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_teachers_created_at ON teachers(created_at);

-- files
CREATE TABLE IF NOT EXISTS files (
    id VARCHAR(24) PRIMARY KEY,
    object_key TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    content_type VARCHAR(128) NOT NULL DEFAULT '',
    size INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT (datetime('now'))
);
`
