package vrm

import "errors"

// Sentinel errors for model parsing.
var (
	// ErrNotGLTF is returned when the data is neither a GLB container
	// nor a glTF JSON document.
	ErrNotGLTF = errors.New("vrm: not a glTF document")

	// ErrTruncated is returned when a GLB container ends mid-chunk.
	ErrTruncated = errors.New("vrm: truncated GLB container")

	// ErrNoJSONChunk is returned when a GLB container has no JSON chunk.
	ErrNoJSONChunk = errors.New("vrm: GLB missing JSON chunk")

	// ErrVersion is returned for GLB container versions other than 2.
	ErrVersion = errors.New("vrm: unsupported GLB version")
)
