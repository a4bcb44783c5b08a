package response

import (
	"time"

	"mlstudio/internal/api/models"
	"mlstudio/internal/compile"
)

type NodeResponseDTO struct {
	Key  string         `json:"key"`
	Type string         `json:"type"`
	Name string         `json:"name"`
	Xpos float32        `json:"xpos"`
	Ypos float32        `json:"ypos"`
	Data map[string]any `json:"data"`
}

type EdgeResponseDTO struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type WorkflowSummaryDTO struct {
	ID          uint                      `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Folder      string                    `json:"folder"`
	OwnerID     uint                      `json:"ownerId"`
	Visibility  models.WorkflowVisibility `json:"visibility"`
	Active      bool                      `json:"active"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

type WorkflowResponseDTO struct {
	WorkflowSummaryDTO
	Nodes []NodeResponseDTO `json:"nodes"`
	Edges []EdgeResponseDTO `json:"edges"`
}

// CompileResponseDTO carries the generated script along with the per-node
// failures. A workflow with failing nodes still returns a script; the broken
// nodes are represented by commented placeholders.
type CompileResponseDTO struct {
	Script         string              `json:"script"`
	OrderedNodeIDs []string            `json:"orderedNodeIds"`
	NodeErrors     []compile.NodeError `json:"nodeErrors"`
	Cached         bool                `json:"cached"`
}

type ScriptRunDTO struct {
	ID         uint       `json:"id"`
	WorkflowID uint       `json:"workflowId"`
	Status     string     `json:"status"`
	Output     string     `json:"output"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
