package models

// Edge connects two nodes of a workflow by their editor-assigned keys.
type Edge struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SourceKey string `gorm:"column:source_key;not null" json:"source"`
	TargetKey string `gorm:"column:target_key;not null" json:"target"`

	WorkflowID uint `gorm:"index" json:"workflowId"`
}

func (Edge) TableName() string {
	return "edge"
}
