package models

import "time"

type WorkflowVisibility string

const (
	WorkflowVisibilityPrivate WorkflowVisibility = "private"
	WorkflowVisibilityPublic  WorkflowVisibility = "public"
)

type Workflow struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Description string
	Folder      string
	OwnerID     uint
	Visibility  WorkflowVisibility `gorm:"default:private"`
	Active      bool
	Nodes       []Node    `gorm:"foreignKey:WorkflowID"`
	Edges       []Edge    `gorm:"foreignKey:WorkflowID"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;column:updated_at"`
}

func (Workflow) TableName() string {
	return "workflow"
}
