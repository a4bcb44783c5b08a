package request

import "mlstudio/internal/api/models"

type ValidateQueryRequest struct {
	Query string `json:"query" validate:"required"`
}

type FetchSchemaRequest struct {
	Connection models.DBConnectionConfig `json:"connection" validate:"required"`
}
