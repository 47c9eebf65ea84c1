// Package db creates the database connection backing the audit store.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// defaultSQLiteFile is used when no database URL is configured.
const defaultSQLiteFile = "mcpbridge.db"

// NewDBConnection opens the audit database. An empty dsn selects an embedded
// sqlite file; a postgres:// or postgresql:// URL selects postgres.
func NewDBConnection(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch {
	case dsn == "":
		logger.Info("no database url configured, using embedded sqlite",
			zap.String("file", defaultSQLiteFile),
		)
		conn, err = gorm.Open(sqlite.Open(defaultSQLiteFile), cfg)
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database url %q", dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}
