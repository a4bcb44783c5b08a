package response

import "mlstudio/pkg"

type ValidateQueryResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type SchemaResponse struct {
	Columns []pkg.TableMetadata `json:"columns"`
}
