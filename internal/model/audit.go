package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TurnLog records one handled inbound message (a turn).
type TurnLog struct {
	gorm.Model

	ChannelID string `json:"channel_id" gorm:"index"`
	UserID    string `json:"user_id"`

	// ToolCount is the number of tools selected for this turn.
	ToolCount int `json:"tool_count"`
	// ErrorCount is the number of tool executions that failed within the turn.
	ErrorCount int `json:"error_count"`
}

// ToolCallLog persists one tool execution record for auditing.
type ToolCallLog struct {
	gorm.Model

	TurnLogID uint `json:"-" gorm:"index"`

	ToolID     string         `json:"tool_id" gorm:"index"`
	Input      datatypes.JSON `json:"input" gorm:"type:jsonb"`
	Output     datatypes.JSON `json:"output" gorm:"type:jsonb"`
	Success    bool           `json:"success"`
	Error      string         `json:"error"`
	DurationMs int64          `json:"duration_ms"`
}
