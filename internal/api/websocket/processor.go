package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/service"
)

// MessageProcessor handles WebSocket messages and performs database operations
type MessageProcessor struct {
	workflowService *service.WorkflowService
	compileService  *service.CompileService
	logger          zerolog.Logger
}

// NewMessageProcessor creates a new message processor
func NewMessageProcessor(workflowService *service.WorkflowService, compileService *service.CompileService, logger zerolog.Logger) *MessageProcessor {
	return &MessageProcessor{
		workflowService: workflowService,
		compileService:  compileService,
		logger:          logger,
	}
}

// ProcessMessage processes a message and performs necessary database operations
// Returns the updated message to broadcast, or error if processing failed
func (p *MessageProcessor) ProcessMessage(msg *Message) (*Message, error) {
	switch msg.Type {
	case MessageTypeWorkflowUpdate:
		return p.processWorkflowUpdate(msg)
	case MessageTypeGraphUpdate:
		return p.processGraphUpdate(msg)

	default:
		// Other message types don't require processing (chat, cursor, etc.)
		return msg, nil
	}
}

func (p *MessageProcessor) validateData(msg *Message, out any) error {
	dataBytes, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal message data: %w", err)
	}

	if err := json.Unmarshal(dataBytes, out); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}

	return nil
}

// processWorkflowUpdate handles updating workflow metadata
func (p *MessageProcessor) processWorkflowUpdate(msg *Message) (*Message, error) {
	var update WorkflowUpdate
	if err := p.validateData(msg, &update); err != nil {
		return nil, err
	}

	var patch = make(map[string]any)

	if update.Name != nil {
		patch["name"] = *update.Name
	}
	if update.Description != nil {
		patch["description"] = *update.Description
	}
	if update.Active != nil {
		patch["active"] = *update.Active
	}

	if _, err := p.workflowService.Update(msg.WorkflowID, patch); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	p.logger.Info().
		Uint("workflowId", msg.WorkflowID).
		Uint("userId", msg.UserID).
		Msg("Workflow updated via WebSocket")

	return msg, nil
}

// processGraphUpdate persists the replacement graph, recompiles it and turns
// the message into a graph_compiled broadcast carrying the script preview
func (p *MessageProcessor) processGraphUpdate(msg *Message) (*Message, error) {
	var graph GraphUpdate
	if err := p.validateData(msg, &graph); err != nil {
		return nil, err
	}

	if _, err := p.workflowService.SaveGraph(msg.WorkflowID, request.SaveGraph{
		Nodes: graph.Nodes,
		Edges: graph.Edges,
	}); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}

	result, cached, err := p.compileService.CompileWorkflow(msg.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("graph saved but compilation failed: %w", err)
	}

	p.logger.Info().
		Uint("workflowId", msg.WorkflowID).
		Uint("userId", msg.UserID).
		Int("nodes", len(graph.Nodes)).
		Int("nodeErrors", len(result.NodeErrors)).
		Msg("Graph updated via WebSocket")

	out := *msg
	out.Type = MessageTypeGraphCompiled
	out.Data = GraphCompiled{
		Nodes:      graph.Nodes,
		Edges:      graph.Edges,
		Script:     result.Script,
		NodeErrors: result.NodeErrors,
		Cached:     cached,
	}
	return &out, nil
}
