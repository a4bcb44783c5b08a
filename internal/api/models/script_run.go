package models

import "time"

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// ScriptRun records one execution of a workflow's compiled script.
type ScriptRun struct {
	ID         uint `gorm:"primaryKey"`
	WorkflowID uint `gorm:"index"`
	Status     RunStatus
	Script     string `gorm:"type:text"`
	Output     string `gorm:"type:text"`
	Error      string `gorm:"type:text"`
	StartedAt  time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime;column:created_at"`
}

func (ScriptRun) TableName() string {
	return "script_run"
}
