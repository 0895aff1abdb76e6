package pose

import "errors"

// Sentinel errors for pose loading and registry operations.
var (
	// ErrNotFound is returned when a named pose is not registered.
	ErrNotFound = errors.New("pose: not found")

	// ErrNilSnapshot is returned when registering a nil snapshot.
	ErrNilSnapshot = errors.New("pose: nil snapshot")

	// ErrNoName is returned when registering a snapshot without a name.
	ErrNoName = errors.New("pose: snapshot has no name")

	// ErrEmptySource is returned when loading from an empty path.
	ErrEmptySource = errors.New("pose: empty source path")
)
