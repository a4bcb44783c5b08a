package mapper

import (
	"fmt"

	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/handler/response"
	"mlstudio/internal/api/models"
	"mlstudio/internal/compile"
)

type WorkflowMapper struct{}

func NewWorkflowMapper() WorkflowMapper {
	return WorkflowMapper{}
}

// NodeDTOsToEntities converts editor nodes into rows. The property bag is
// serialized into the jsonb data column.
func (WorkflowMapper) NodeDTOsToEntities(dtos []request.NodeDTO, workflowID uint) ([]models.Node, error) {
	nodes := make([]models.Node, 0, len(dtos))
	for _, dto := range dtos {
		node := models.Node{
			Key:        dto.Key,
			Type:       dto.Type,
			Name:       dto.Name,
			Xpos:       dto.Xpos,
			Ypos:       dto.Ypos,
			WorkflowID: workflowID,
		}
		if err := node.SetProps(dto.Data); err != nil {
			return nil, fmt.Errorf("node %s: %w", dto.Key, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (WorkflowMapper) EdgeDTOsToEntities(dtos []request.EdgeDTO, workflowID uint) []models.Edge {
	edges := make([]models.Edge, 0, len(dtos))
	for _, dto := range dtos {
		edges = append(edges, models.Edge{
			SourceKey:  dto.Source,
			TargetKey:  dto.Target,
			WorkflowID: workflowID,
		})
	}
	return edges
}

func (slf WorkflowMapper) EntityToResponse(workflow models.Workflow) (response.WorkflowResponseDTO, error) {
	resp := response.WorkflowResponseDTO{
		WorkflowSummaryDTO: slf.EntityToSummary(workflow),
		Nodes:              make([]response.NodeResponseDTO, 0, len(workflow.Nodes)),
		Edges:              make([]response.EdgeResponseDTO, 0, len(workflow.Edges)),
	}

	for _, node := range workflow.Nodes {
		props, err := node.Props()
		if err != nil {
			return response.WorkflowResponseDTO{}, fmt.Errorf("node %s: %w", node.Key, err)
		}
		resp.Nodes = append(resp.Nodes, response.NodeResponseDTO{
			Key:  node.Key,
			Type: node.Type,
			Name: node.Name,
			Xpos: node.Xpos,
			Ypos: node.Ypos,
			Data: props,
		})
	}

	for _, edge := range workflow.Edges {
		resp.Edges = append(resp.Edges, response.EdgeResponseDTO{
			Source: edge.SourceKey,
			Target: edge.TargetKey,
		})
	}

	return resp, nil
}

func (WorkflowMapper) EntityToSummary(workflow models.Workflow) response.WorkflowSummaryDTO {
	return response.WorkflowSummaryDTO{
		ID:          workflow.ID,
		Name:        workflow.Name,
		Description: workflow.Description,
		Folder:      workflow.Folder,
		OwnerID:     workflow.OwnerID,
		Visibility:  workflow.Visibility,
		Active:      workflow.Active,
		UpdatedAt:   workflow.UpdatedAt,
	}
}

// EntityToGraph turns a stored workflow into compiler input. Node keys become
// graph node ids; row order is preserved so compilation stays deterministic.
func (WorkflowMapper) EntityToGraph(workflow models.Workflow) (*compile.Graph, error) {
	graph := &compile.Graph{
		Nodes: make([]compile.Node, 0, len(workflow.Nodes)),
		Edges: make([]compile.Edge, 0, len(workflow.Edges)),
	}

	for _, node := range workflow.Nodes {
		props, err := node.Props()
		if err != nil {
			return nil, fmt.Errorf("node %s has invalid data: %w", node.Key, err)
		}
		graph.Nodes = append(graph.Nodes, compile.Node{
			ID:   node.Key,
			Type: node.Type,
			Name: node.Name,
			Data: props,
		})
	}

	for _, edge := range workflow.Edges {
		graph.Edges = append(graph.Edges, compile.Edge{
			Source: edge.SourceKey,
			Target: edge.TargetKey,
		})
	}

	return graph, nil
}

func (WorkflowMapper) EntityToRunResponse(run models.ScriptRun) response.ScriptRunDTO {
	return response.ScriptRunDTO{
		ID:         run.ID,
		WorkflowID: run.WorkflowID,
		Status:     string(run.Status),
		Output:     run.Output,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}
