// Package postgres PostgreSQL 数据库驱动
//
// 提供 PostgreSQL 连接管理和方言实现。
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"afro-class/internal/shared/storage/dbutil"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation PostgreSQL unique_violation 错误码
const uniqueViolation = "23505"

// Dialect PostgreSQL 方言实现
type Dialect struct{}

var _ dbutil.Dialect = (*Dialect)(nil)

func (d *Dialect) DriverType() dbutil.DriverType {
	return dbutil.DriverPostgres
}

func (d *Dialect) Rebind(query string) string {
	return dbutil.RebindToPositional(query)
}

func (d *Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (d *Dialect) AutoMigrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Open 创建 PostgreSQL 数据库连接
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// NewDialect 创建 PostgreSQL 方言
func NewDialect() *Dialect {
	return &Dialect{}
}

// schema PostgreSQL 建表语句
const schema = `
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
    grade DOUBLE PRECISION,
    subjects TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_students_created_at ON students(created_at);

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
    grade DOUBLE PRECISION,
    subjects TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_teachers_created_at ON teachers(created_at);

CREATE TABLE IF NOT EXISTS files (
    id VARCHAR(24) PRIMARY KEY,
    object_key TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    content_type VARCHAR(128) NOT NULL DEFAULT '',
    size BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
