package repo

import (
	"mlstudio"
	"mlstudio/internal/api/models"

	"gorm.io/gorm"
)

type WorkflowRepository struct {
	Db *gorm.DB
}

func NewWorkflowRepository() *WorkflowRepository {
	return &WorkflowRepository{Db: mlstudio.DB}
}

// FindByID retrieves a workflow with its nodes and edges.
func (slf *WorkflowRepository) FindByID(id uint) (models.Workflow, error) {
	var workflow models.Workflow
	err := slf.Db.
		Preload("Nodes").
		Preload("Edges").
		First(&workflow, id).Error
	return workflow, err
}

func (slf *WorkflowRepository) FindAllForUser(userID uint) ([]models.Workflow, error) {
	var workflows []models.Workflow
	err := slf.Db.
		Where("workflow.visibility = ? OR workflow.owner_id = ?",
			models.WorkflowVisibilityPublic, userID).
		Find(&workflows).Error
	return workflows, err
}

func (slf *WorkflowRepository) Create(workflow *models.Workflow) error {
	return slf.Db.Create(workflow).Error
}

func (slf *WorkflowRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Workflow{}, id).Error
}
