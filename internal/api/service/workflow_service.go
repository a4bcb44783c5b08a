package service

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"mlstudio"
	"mlstudio/internal/api/handler/mapper"
	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/models"
	"mlstudio/internal/api/repo"
)

type WorkflowService struct {
	workflowRepo   *repo.WorkflowRepository
	workflowMapper mapper.WorkflowMapper
	logger         zerolog.Logger
}

func NewWorkflowService() *WorkflowService {
	return &WorkflowService{
		workflowRepo:   repo.NewWorkflowRepository(),
		workflowMapper: mapper.NewWorkflowMapper(),
		logger:         mlstudio.Logger,
	}
}

// FindAllForUser retrieves all workflows visible to a user (public + owned)
func (slf *WorkflowService) FindAllForUser(userID uint) ([]models.Workflow, error) {
	workflows, err := slf.workflowRepo.FindAllForUser(userID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("userID", userID).Msg("Error getting workflows for user")
		return nil, err
	}
	return workflows, nil
}

// FindByID retrieves a workflow with its nodes and edges
func (slf *WorkflowService) FindByID(id uint) (*models.Workflow, error) {
	workflow, err := slf.workflowRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slf.logger.Error().Uint("workflowId", id).Msg("Workflow not found")
			return nil, errors.New("workflow not found")
		}
		slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Error getting workflow")
		return nil, err
	}
	return &workflow, nil
}

// Create creates a workflow with its initial graph
func (slf *WorkflowService) Create(req request.CreateWorkflow, ownerID uint) (*models.Workflow, error) {
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.WorkflowVisibilityPrivate
	}

	workflow := models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Folder:      req.Folder,
		OwnerID:     ownerID,
		Visibility:  visibility,
		Active:      true,
	}

	tx := slf.workflowRepo.Db.Begin()

	if err := tx.Create(&workflow).Error; err != nil {
		tx.Rollback()
		slf.logger.Error().Err(err).Msg("Error creating workflow")
		return nil, err
	}

	if err := slf.insertGraph(tx, workflow.ID, req.Nodes, req.Edges); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		slf.logger.Error().Err(err).Msg("Error committing workflow creation")
		return nil, err
	}

	return slf.FindByID(workflow.ID)
}

// Update updates a workflow's fields (not its graph)
func (slf *WorkflowService) Update(id uint, patch map[string]any) (*models.Workflow, error) {
	if len(patch) > 0 {
		if err := slf.workflowRepo.Db.Model(&models.Workflow{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Error updating workflow")
			return nil, err
		}
	}
	return slf.FindByID(id)
}

// SaveGraph replaces the node/edge set of a workflow in one transaction.
// Edges reference nodes by editor key, so a full delete and recreate keeps
// the graph consistent without id bookkeeping.
func (slf *WorkflowService) SaveGraph(id uint, req request.SaveGraph) (*models.Workflow, error) {
	tx := slf.workflowRepo.Db.Begin()

	if err := tx.Where("workflow_id = ?", id).Delete(&models.Edge{}).Error; err != nil {
		tx.Rollback()
		slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Error deleting edges")
		return nil, err
	}
	if err := tx.Where("workflow_id = ?", id).Delete(&models.Node{}).Error; err != nil {
		tx.Rollback()
		slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Error deleting nodes")
		return nil, err
	}

	if err := slf.insertGraph(tx, id, req.Nodes, req.Edges); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Error committing graph save")
		return nil, err
	}

	return slf.FindByID(id)
}

func (slf *WorkflowService) insertGraph(tx *gorm.DB, workflowID uint, nodeDTOs []request.NodeDTO, edgeDTOs []request.EdgeDTO) error {
	nodes, err := slf.workflowMapper.NodeDTOsToEntities(nodeDTOs, workflowID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("workflowId", workflowID).Msg("Invalid node data")
		return err
	}

	keys := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		if keys[node.Key] {
			return errors.New("duplicate node key: " + node.Key)
		}
		keys[node.Key] = true
	}
	for _, edge := range edgeDTOs {
		if !keys[edge.Source] || !keys[edge.Target] {
			return errors.New("edge references unknown node key")
		}
	}

	if len(nodes) > 0 {
		if err := tx.Create(&nodes).Error; err != nil {
			slf.logger.Error().Err(err).Uint("workflowId", workflowID).Msg("Error creating nodes")
			return err
		}
	}

	edges := slf.workflowMapper.EdgeDTOsToEntities(edgeDTOs, workflowID)
	if len(edges) > 0 {
		if err := tx.Create(&edges).Error; err != nil {
			slf.logger.Error().Err(err).Uint("workflowId", workflowID).Msg("Error creating edges")
			return err
		}
	}

	return nil
}

// Delete removes a workflow with its nodes, edges and runs
func (slf *WorkflowService) Delete(id uint) error {
	tx := slf.workflowRepo.Db.Begin()

	if err := tx.Where("workflow_id = ?", id).Delete(&models.Edge{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("workflow_id = ?", id).Delete(&models.Node{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("workflow_id = ?", id).Delete(&models.ScriptRun{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Workflow{}, id).Error; err != nil {
		tx.Rollback()
		slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Error deleting workflow")
		return err
	}

	return tx.Commit().Error
}

// CanUserAccess checks if a user can see a workflow. The second result is
// true when the user owns it and may modify it.
func (slf *WorkflowService) CanUserAccess(workflowID, userID uint) (bool, bool, error) {
	var workflow models.Workflow
	if err := slf.workflowRepo.Db.First(&workflow, workflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, errors.New("workflow not found")
		}
		return false, false, err
	}

	if workflow.OwnerID == userID {
		return true, true, nil
	}
	if workflow.Visibility == models.WorkflowVisibilityPublic {
		return true, false, nil
	}
	return false, false, nil
}
