package request

import "mlstudio/internal/api/models"

// NodeDTO is one node of the editor graph. Key is the editor-side
// identifier referenced by edges.
type NodeDTO struct {
	Key  string         `json:"key" validate:"required"`
	Type string         `json:"type" validate:"required"`
	Name string         `json:"name"`
	Xpos float32        `json:"xpos"`
	Ypos float32        `json:"ypos"`
	Data map[string]any `json:"data"`
}

type EdgeDTO struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

type CreateWorkflow struct {
	Name        string                    `json:"name" validate:"required"`
	Description string                    `json:"description"`
	Folder      string                    `json:"folder"`
	Visibility  models.WorkflowVisibility `json:"visibility"` // public or private (default: private)
	Nodes       []NodeDTO                 `json:"nodes"`
	Edges       []EdgeDTO                 `json:"edges"`
}

type UpdateWorkflow struct {
	Name        *string                    `json:"name,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Folder      *string                    `json:"folder,omitempty"`
	Visibility  *models.WorkflowVisibility `json:"visibility,omitempty"`
	Active      *bool                      `json:"active,omitempty"`
}

// SaveGraph replaces the whole node/edge set of a workflow.
type SaveGraph struct {
	Nodes []NodeDTO `json:"nodes"`
	Edges []EdgeDTO `json:"edges"`
}
