// Package migrations applies the audit store schema.
package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mcpbridge/mcpbridge/internal/model"
)

// Migrate brings the database schema up to date.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.TurnLog{},
		&model.ToolCallLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
