package websocket

import (
	"time"
)

// Message is the base message structure
// Data field uses 'any' to allow different types through channels
type Message struct {
	Type       MessageType `json:"type"`
	WorkflowID uint        `json:"workflowId,omitempty"`
	UserID     uint        `json:"userId"`
	Username   string      `json:"username"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
}

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Workflow operations
	MessageTypeWorkflowUpdate MessageType = "workflow_update"
	MessageTypeGraphUpdate    MessageType = "graph_update"
	MessageTypeGraphCompiled  MessageType = "graph_compiled"
	MessageTypeRunProgress    MessageType = "run_progress"

	// User interactions
	MessageTypeCursorMove MessageType = "cursor_move"
	MessageTypeChat       MessageType = "chat"
	MessageTypeUserJoin   MessageType = "user_join"
	MessageTypeUserLeave  MessageType = "user_leave"

	// System messages
	MessageTypeError MessageType = "error"
	MessageTypePing  MessageType = "ping"
	MessageTypePong  MessageType = "pong"
)
