// Package audit persists turn and tool-call logs and aggregates usage
// statistics. The in-memory registries stay authoritative for tool and
// provider state; the audit store only accumulates history.
package audit

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mcpbridge/mcpbridge/internal/model"
)

// Service writes audit records and answers stats queries.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates an audit service on the given database handle.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger}
}

// RecordTurn persists one turn log together with its tool-call logs.
func (s *Service) RecordTurn(channelID, userID string, records []model.ExecutionRecord) error {
	turn := &model.TurnLog{
		ChannelID: channelID,
		UserID:    userID,
		ToolCount: len(records),
	}
	for _, rec := range records {
		if !rec.Success {
			turn.ErrorCount++
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(turn).Error; err != nil {
			return fmt.Errorf("failed to create turn log: %w", err)
		}
		for _, rec := range records {
			call := &model.ToolCallLog{
				TurnLogID:  turn.ID,
				ToolID:     rec.ToolID,
				Success:    rec.Success,
				Error:      rec.Error,
				DurationMs: rec.Duration.Milliseconds(),
			}
			if rec.Input != nil {
				raw, err := json.Marshal(rec.Input)
				if err == nil {
					call.Input = datatypes.JSON(raw)
				}
			}
			if rec.Output != nil {
				raw, err := json.Marshal(rec.Output)
				if err == nil {
					call.Output = datatypes.JSON(raw)
				}
			}
			if err := tx.Create(call).Error; err != nil {
				return fmt.Errorf("failed to create tool call log: %w", err)
			}
		}
		return nil
	})
}

// Counters holds the audit-side aggregates merged into usage stats.
type Counters struct {
	MessageCount  int64
	ChannelCount  int64
	ToolCallCount int64
	ToolCallFails int64
}

// Counters computes the aggregate counters over all persisted logs.
func (s *Service) Counters() (Counters, error) {
	var c Counters

	if err := s.db.Model(&model.TurnLog{}).Count(&c.MessageCount).Error; err != nil {
		return c, fmt.Errorf("failed to count turns: %w", err)
	}
	if err := s.db.Model(&model.TurnLog{}).
		Distinct("channel_id").Count(&c.ChannelCount).Error; err != nil {
		return c, fmt.Errorf("failed to count channels: %w", err)
	}
	if err := s.db.Model(&model.ToolCallLog{}).Count(&c.ToolCallCount).Error; err != nil {
		return c, fmt.Errorf("failed to count tool calls: %w", err)
	}
	if err := s.db.Model(&model.ToolCallLog{}).
		Where("success = ?", false).Count(&c.ToolCallFails).Error; err != nil {
		return c, fmt.Errorf("failed to count failed tool calls: %w", err)
	}
	return c, nil
}

// RecentTurns returns the most recent turn logs, newest first.
func (s *Service) RecentTurns(limit int) ([]model.TurnLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var turns []model.TurnLog
	err := s.db.Order("created_at DESC").Limit(limit).Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	return turns, nil
}

// CallsForTurn returns the tool-call logs of one turn, oldest first.
func (s *Service) CallsForTurn(turnID uint) ([]model.ToolCallLog, error) {
	var calls []model.ToolCallLog
	err := s.db.Where("turn_log_id = ?", turnID).Order("created_at ASC").Find(&calls).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tool calls: %w", err)
	}
	return calls, nil
}
