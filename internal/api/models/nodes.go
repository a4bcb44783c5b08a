package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// NodeData holds a node's property bag as raw JSON, stored in a jsonb column.
type NodeData []byte

// Scan implements sql.Scanner interface
func (n *NodeData) Scan(value interface{}) error {
	if value == nil {
		*n = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*n = v
		return nil
	case string:
		*n = []byte(v)
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into NodeData", value)
	}
}

// Value implements driver.Valuer interface
func (n NodeData) Value() (driver.Value, error) {
	if n == nil {
		return nil, nil
	}
	return []byte(n), nil
}

// MarshalJSON implements json.Marshaler - returns raw JSON
func (n NodeData) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return n, nil
}

// UnmarshalJSON implements json.Unmarshaler - stores raw JSON
func (n *NodeData) UnmarshalJSON(data []byte) error {
	if data == nil {
		*n = nil
		return nil
	}
	*n = data
	return nil
}

// Node is one placed operation of a workflow as persisted. Key is the
// editor-assigned graph id, stable across saves; Type references a node
// definition in the catalog.
type Node struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Key  string `gorm:"column:node_key;not null" json:"key"`
	Type string `json:"type"`
	Name string `json:"name"`
	Xpos float32
	Ypos float32
	Data NodeData `json:"data" gorm:"type:jsonb"`

	WorkflowID uint `gorm:"index" json:"workflowId"`
}

func (Node) TableName() string {
	return "node"
}

// Props deserializes the jsonb property bag.
func (slf Node) Props() (map[string]any, error) {
	if slf.Data == nil {
		return map[string]any{}, nil
	}
	var props map[string]any
	if err := json.Unmarshal(slf.Data, &props); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node data: %w", err)
	}
	return props, nil
}

// SetProps serializes and stores a property bag.
func (slf *Node) SetProps(props map[string]any) error {
	if props == nil {
		props = map[string]any{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal node data: %w", err)
	}
	slf.Data = data
	return nil
}
