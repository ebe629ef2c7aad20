// Package db opens the journal database.
package db

import (
	"fmt"

	"github.com/kasuganosora/tilecombat/config"
	dbmysql "github.com/kasuganosora/tilecombat/db/mysql"
	dbsqlite "github.com/kasuganosora/tilecombat/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("db: sqlite mode needs sqlite_path")
		}
		db, err := dbsqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %q: %w", cfg.SQLitePath, err)
		}
		return db, nil
	case ModeMySQL:
		db, err := dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
		if err != nil {
			return nil, fmt.Errorf("db: open mysql: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
