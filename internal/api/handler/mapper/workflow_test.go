package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/models"
)

func TestWorkflowMapper_NodeDTOsToEntities(t *testing.T) {
	m := NewWorkflowMapper()

	nodes, err := m.NodeDTOsToEntities([]request.NodeDTO{
		{Key: "load", Type: "load_csv", Name: "Load", Xpos: 10, Ypos: 20, Data: map[string]any{"path": "data.csv", "header": true}},
		{Key: "clean", Type: "drop_na"},
	}, 7)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "load", nodes[0].Key)
	assert.Equal(t, uint(7), nodes[0].WorkflowID)

	props, err := nodes[0].Props()
	require.NoError(t, err)
	assert.Equal(t, "data.csv", props["path"])
	assert.Equal(t, true, props["header"])

	// A node without data still round-trips to an empty property bag
	props, err = nodes[1].Props()
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestWorkflowMapper_EntityToGraph(t *testing.T) {
	m := NewWorkflowMapper()

	workflow := models.Workflow{
		ID:   3,
		Name: "Pipeline",
	}

	load := models.Node{Key: "load", Type: "load_csv", Name: "Load", WorkflowID: 3}
	require.NoError(t, load.SetProps(map[string]any{"path": "sales.csv"}))
	clean := models.Node{Key: "clean", Type: "drop_na", WorkflowID: 3}
	require.NoError(t, clean.SetProps(nil))

	workflow.Nodes = []models.Node{load, clean}
	workflow.Edges = []models.Edge{{SourceKey: "load", TargetKey: "clean", WorkflowID: 3}}

	graph, err := m.EntityToGraph(workflow)
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "load", graph.Nodes[0].ID)
	assert.Equal(t, "load_csv", graph.Nodes[0].Type)
	assert.Equal(t, "sales.csv", graph.Nodes[0].Data["path"])

	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "load", graph.Edges[0].Source)
	assert.Equal(t, "clean", graph.Edges[0].Target)
}

func TestWorkflowMapper_EntityToResponse(t *testing.T) {
	m := NewWorkflowMapper()

	node := models.Node{Key: "load", Type: "load_csv", Xpos: 1.5, Ypos: 2.5, WorkflowID: 9}
	require.NoError(t, node.SetProps(map[string]any{"path": "x.csv"}))

	workflow := models.Workflow{
		ID:         9,
		Name:       "Resp",
		OwnerID:    4,
		Visibility: models.WorkflowVisibilityPublic,
		Active:     true,
		Nodes:      []models.Node{node},
		Edges:      []models.Edge{{SourceKey: "load", TargetKey: "load", WorkflowID: 9}},
	}

	resp, err := m.EntityToResponse(workflow)
	require.NoError(t, err)

	assert.Equal(t, uint(9), resp.ID)
	assert.Equal(t, models.WorkflowVisibilityPublic, resp.Visibility)
	require.Len(t, resp.Nodes, 1)
	assert.Equal(t, "x.csv", resp.Nodes[0].Data["path"])
	require.Len(t, resp.Edges, 1)
}
