package scene

import "errors"

// Authoring-time contract violations. They abort only the call that
// triggered them and leave the scene unchanged.
var (
	// ErrInvalidReference is returned for self-attachment, attachments that
	// would close a cycle, and absolute placement of an attached box.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrOutOfBounds is returned when an aperture leaves the box footprint.
	ErrOutOfBounds = errors.New("aperture out of bounds")

	// ErrDepthExceeded is returned when an aperture is deeper than the box
	// height available below its offset.
	ErrDepthExceeded = errors.New("aperture depth exceeds box height")

	// ErrInvalidDimensions is returned when a box is constructed with a
	// non-positive dimension.
	ErrInvalidDimensions = errors.New("invalid box dimensions")
)
