package response

// APIError is the error envelope every endpoint returns on failure, from bad
// workflow payloads to compile refusals.
type APIError struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}
