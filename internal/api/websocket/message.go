package websocket

import (
	errors2 "errors"
	"time"

	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/compile"
	"mlstudio/internal/realtime"
)

// WorkflowUpdate represents a workflow metadata update event
type WorkflowUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// GraphUpdate carries the full replacement graph sent by an editor
type GraphUpdate struct {
	Nodes []request.NodeDTO `json:"nodes"`
	Edges []request.EdgeDTO `json:"edges"`
}

// GraphCompiled is broadcast after a graph update was persisted and compiled,
// so every editor gets the saved graph plus the fresh script preview
type GraphCompiled struct {
	Nodes      []request.NodeDTO   `json:"nodes"`
	Edges      []request.EdgeDTO   `json:"edges"`
	Script     string              `json:"script"`
	NodeErrors []compile.NodeError `json:"nodeErrors"`
	Cached     bool                `json:"cached"`
}

// UserInfo represents user information in the room
type UserInfo struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Error         error  `json:"error"`
	CustomMessage string `json:"customMessage"`
}

// NewErrorMessage creates a new error message
func NewErrorMessage(workflowID uint, userID uint, username string, errorText string, errors ...error) Message {
	return Message{
		Type:       MessageTypeError,
		WorkflowID: workflowID,
		UserID:     userID,
		Username:   username,
		Timestamp:  time.Now(),
		Data: ErrorMessage{
			Error:         errors2.Join(errors...),
			CustomMessage: errorText,
		},
	}
}

// NewUserJoinMessage creates a new user join message
func NewUserJoinMessage(workflowID uint, userID uint, username string, userInfo UserInfo) Message {
	return Message{
		Type:       MessageTypeUserJoin,
		WorkflowID: workflowID,
		UserID:     userID,
		Username:   username,
		Timestamp:  time.Now(),
		Data:       userInfo,
	}
}

// NewUserLeaveMessage creates a new user leave message
func NewUserLeaveMessage(workflowID uint, userID uint, username string, userInfo UserInfo) Message {
	return Message{
		Type:       MessageTypeUserLeave,
		WorkflowID: workflowID,
		UserID:     userID,
		Username:   username,
		Timestamp:  time.Now(),
		Data:       userInfo,
	}
}

// NewRunProgressMessage wraps a run progress event relayed from the runner
func NewRunProgressMessage(progress realtime.RunProgress) Message {
	return Message{
		Type:       MessageTypeRunProgress,
		WorkflowID: progress.WorkflowID,
		UserID:     0,
		Username:   "system",
		Timestamp:  time.Now(),
		Data:       progress,
	}
}
