package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio"
	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/models"
)

func setupWorkflowTestDB(t *testing.T) {
	mlstudio.InitConfig("../../../.env.test")

	err := mlstudio.DB.AutoMigrate(&models.Workflow{}, &models.Node{}, &models.Edge{}, &models.ScriptRun{})
	require.NoError(t, err, "Failed to migrate workflow tables")
}

func cleanupWorkflow(t *testing.T, id uint) {
	if id > 0 {
		mlstudio.DB.Where("workflow_id = ?", id).Delete(&models.Edge{})
		mlstudio.DB.Where("workflow_id = ?", id).Delete(&models.Node{})
		mlstudio.DB.Where("workflow_id = ?", id).Delete(&models.ScriptRun{})
		mlstudio.DB.Delete(&models.Workflow{}, id)
	}
}

func sampleGraph() ([]request.NodeDTO, []request.EdgeDTO) {
	nodes := []request.NodeDTO{
		{Key: "load", Type: "load_csv", Name: "Load sales", Data: map[string]any{"path": "sales.csv"}},
		{Key: "clean", Type: "drop_na", Data: map[string]any{}},
	}
	edges := []request.EdgeDTO{
		{Source: "load", Target: "clean"},
	}
	return nodes, edges
}

func TestWorkflow_CreateWithGraph(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()
	nodes, edges := sampleGraph()

	created, err := service.Create(request.CreateWorkflow{
		Name:        "Sales cleanup",
		Description: "Load and clean the sales export",
		Nodes:       nodes,
		Edges:       edges,
	}, 1)
	require.NoError(t, err, "Failed to create workflow")
	defer cleanupWorkflow(t, created.ID)

	assert.Equal(t, "Sales cleanup", created.Name)
	assert.Equal(t, models.WorkflowVisibilityPrivate, created.Visibility)
	assert.True(t, created.Active)
	require.Len(t, created.Nodes, 2)
	require.Len(t, created.Edges, 1)
	assert.Equal(t, "load", created.Edges[0].SourceKey)
	assert.Equal(t, "clean", created.Edges[0].TargetKey)

	props, err := created.Nodes[0].Props()
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", props["path"])
}

func TestWorkflow_Create_RejectsDanglingEdge(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()
	nodes, _ := sampleGraph()

	_, err := service.Create(request.CreateWorkflow{
		Name:  "Broken",
		Nodes: nodes,
		Edges: []request.EdgeDTO{{Source: "load", Target: "missing"}},
	}, 1)
	require.Error(t, err, "Should reject an edge to an unknown node key")
	assert.Contains(t, err.Error(), "unknown node key")
}

func TestWorkflow_Create_RejectsDuplicateKeys(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()

	_, err := service.Create(request.CreateWorkflow{
		Name: "Duplicates",
		Nodes: []request.NodeDTO{
			{Key: "n1", Type: "load_csv"},
			{Key: "n1", Type: "drop_na"},
		},
	}, 1)
	require.Error(t, err, "Should reject duplicate node keys")
	assert.Contains(t, err.Error(), "duplicate node key")
}

func TestWorkflow_SaveGraph_ReplacesNodesAndEdges(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()
	nodes, edges := sampleGraph()

	created, err := service.Create(request.CreateWorkflow{
		Name:  "Replace me",
		Nodes: nodes,
		Edges: edges,
	}, 1)
	require.NoError(t, err)
	defer cleanupWorkflow(t, created.ID)

	updated, err := service.SaveGraph(created.ID, request.SaveGraph{
		Nodes: []request.NodeDTO{
			{Key: "load", Type: "load_csv", Data: map[string]any{"path": "v2.csv"}},
			{Key: "scale", Type: "standard_scaler", Data: map[string]any{"columns": []string{"amount"}}},
			{Key: "cluster", Type: "kmeans_cluster", Data: map[string]any{"n_clusters": 3}},
		},
		Edges: []request.EdgeDTO{
			{Source: "load", Target: "scale"},
			{Source: "scale", Target: "cluster"},
		},
	})
	require.NoError(t, err, "Failed to save graph")

	require.Len(t, updated.Nodes, 3)
	require.Len(t, updated.Edges, 2)

	var keys []string
	for _, node := range updated.Nodes {
		keys = append(keys, node.Key)
	}
	assert.ElementsMatch(t, []string{"load", "scale", "cluster"}, keys)
}

func TestWorkflow_Update_PatchesFields(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()

	created, err := service.Create(request.CreateWorkflow{Name: "Before"}, 1)
	require.NoError(t, err)
	defer cleanupWorkflow(t, created.ID)

	updated, err := service.Update(created.ID, map[string]any{
		"name":       "After",
		"visibility": models.WorkflowVisibilityPublic,
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, models.WorkflowVisibilityPublic, updated.Visibility)
}

func TestWorkflow_CanUserAccess(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()

	private, err := service.Create(request.CreateWorkflow{Name: "Private"}, 1)
	require.NoError(t, err)
	defer cleanupWorkflow(t, private.ID)

	public, err := service.Create(request.CreateWorkflow{
		Name:       "Public",
		Visibility: models.WorkflowVisibilityPublic,
	}, 1)
	require.NoError(t, err)
	defer cleanupWorkflow(t, public.ID)

	canAccess, isOwner, err := service.CanUserAccess(private.ID, 1)
	require.NoError(t, err)
	assert.True(t, canAccess)
	assert.True(t, isOwner)

	canAccess, isOwner, err = service.CanUserAccess(private.ID, 2)
	require.NoError(t, err)
	assert.False(t, canAccess)
	assert.False(t, isOwner)

	canAccess, isOwner, err = service.CanUserAccess(public.ID, 2)
	require.NoError(t, err)
	assert.True(t, canAccess)
	assert.False(t, isOwner)
}

func TestWorkflow_Delete_RemovesGraph(t *testing.T) {
	setupWorkflowTestDB(t)

	service := NewWorkflowService()
	nodes, edges := sampleGraph()

	created, err := service.Create(request.CreateWorkflow{
		Name:  "Doomed",
		Nodes: nodes,
		Edges: edges,
	}, 1)
	require.NoError(t, err)

	require.NoError(t, service.Delete(created.ID))

	_, err = service.FindByID(created.ID)
	require.Error(t, err)
	assert.Equal(t, "workflow not found", err.Error())

	var nodeCount int64
	mlstudio.DB.Model(&models.Node{}).Where("workflow_id = ?", created.ID).Count(&nodeCount)
	assert.Zero(t, nodeCount)
}
