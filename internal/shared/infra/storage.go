package infra

import (
	"database/sql"
	"fmt"
	"log"

	"afro-class/internal/config"
	"afro-class/internal/shared/storage"
	"afro-class/internal/shared/storage/dbutil"
	pgdriver "afro-class/internal/shared/storage/driver/postgres"
	sqlitedriver "afro-class/internal/shared/storage/driver/sqlite"
	"afro-class/internal/shared/storage/mongostore"
	"afro-class/internal/shared/storage/repository"
)

// NewStorage 根据 DatabaseDriver 创建持久化存储
//
//   - mongodb（默认）：mongostore，启动时确保唯一索引
//   - postgres / sqlite：repository + 对应方言，启动时自动建表
func NewStorage(cfg *config.Config) (storage.PersistentStore, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := pgdriver.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return newSQLStore(db, pgdriver.NewDialect())
	case "sqlite":
		db, err := sqlitedriver.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return newSQLStore(db, sqlitedriver.NewDialect())
	case "mongodb", "":
		store, err := mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDBName)
		if err != nil {
			return nil, err
		}
		log.Printf("[infra] Storage: mongodb (%s)", cfg.DatabaseDBName)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}
}

func newSQLStore(db *sql.DB, dialect dbutil.Dialect) (*repository.Store, error) {
	if err := dialect.AutoMigrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate %s: %w", dialect.DriverType(), err)
	}
	log.Printf("[infra] Storage: %s", dialect.DriverType())
	return repository.NewStore(db, dialect), nil
}
