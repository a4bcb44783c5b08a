package request

import "mlstudio/internal/api/models"

type TestConnectionRequest struct {
	Connection models.DBConnectionConfig `json:"connection" validate:"required"`
}

type IntrospectTablesRequest struct {
	Connection models.DBConnectionConfig `json:"connection" validate:"required"`
}

type IntrospectColumnsRequest struct {
	Connection models.DBConnectionConfig `json:"connection" validate:"required"`
	TableName  string                    `json:"tableName" validate:"required"`
}
