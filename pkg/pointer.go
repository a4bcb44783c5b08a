package pkg

// ToPtr builds the optional fields of patch DTOs such as request.UpdateUser
// and request.UpdateWorkflow.
func ToPtr[T any](v T) *T {
	return &v
}

func FromPtr[T any](v *T) T {
	return *v
}
