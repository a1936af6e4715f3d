package model

// notLoadedError signals that one or both artifacts are unavailable.
type notLoadedError struct{}

func (notLoadedError) Error() string {
	return "models not loaded properly, check server logs"
}

// ErrNotLoaded constructs a notLoadedError.
func ErrNotLoaded() error { return notLoadedError{} }

// IsNotLoaded reports whether err indicates missing model artifacts.
func IsNotLoaded(err error) bool {
	_, ok := err.(notLoadedError)
	return ok
}

// unknownCategoryError signals a categorical value outside the trained
// vocabulary. Validation normally catches this before inference.
type unknownCategoryError struct{ field, value string }

func (e unknownCategoryError) Error() string {
	return "unknown " + e.field + " value: " + e.value
}

// ErrUnknownCategory constructs an unknownCategoryError.
func ErrUnknownCategory(field, value string) error {
	return unknownCategoryError{field: field, value: value}
}

// IsUnknownCategory reports whether err indicates an unencodable category.
func IsUnknownCategory(err error) bool {
	_, ok := err.(unknownCategoryError)
	return ok
}
