package repo

import (
	"mlstudio"
	"mlstudio/internal/api/models"

	"gorm.io/gorm"
)

type ScriptRunRepository struct {
	Db *gorm.DB
}

func NewScriptRunRepository() *ScriptRunRepository {
	return &ScriptRunRepository{Db: mlstudio.DB}
}

func (slf *ScriptRunRepository) FindByID(id uint) (models.ScriptRun, error) {
	var run models.ScriptRun
	err := slf.Db.First(&run, id).Error
	return run, err
}

func (slf *ScriptRunRepository) FindByWorkflow(workflowID uint, limit int) ([]models.ScriptRun, error) {
	var runs []models.ScriptRun
	err := slf.Db.
		Where("workflow_id = ?", workflowID).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (slf *ScriptRunRepository) Create(run *models.ScriptRun) error {
	return slf.Db.Create(run).Error
}

func (slf *ScriptRunRepository) Update(run *models.ScriptRun) error {
	return slf.Db.Save(run).Error
}
