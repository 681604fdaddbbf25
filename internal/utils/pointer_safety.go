package utils

// Value dereferences v, yielding the zero value for nil so that optional
// numeric fields from the backend read as zero.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
