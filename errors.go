package canvas2d

import "errors"

var (
	// ErrUnbalancedRestore is returned by Restore when no saved state is left.
	ErrUnbalancedRestore = errors.New("canvas2d: restore without matching save")

	// ErrEmptyImage is returned when a texture is requested for an image with
	// zero width or height.
	ErrEmptyImage = errors.New("canvas2d: image has zero width or height")

	// ErrNotDrawable is returned when the screen surface is used as a draw
	// source.
	ErrNotDrawable = errors.New("canvas2d: image cannot be used as a draw source")

	// ErrPrimaryExists is returned when a second on-screen context is created.
	ErrPrimaryExists = errors.New("canvas2d: primary context already exists")

	// ErrBatchCapacity is returned for a batch capacity the index buffer
	// cannot address.
	ErrBatchCapacity = errors.New("canvas2d: batch capacity out of range")

	// ErrUnknownRegion is returned by DrawRegion for a name the atlas does
	// not define.
	ErrUnknownRegion = errors.New("canvas2d: unknown atlas region")

	// ErrClosed is returned when using a Manager after Close.
	ErrClosed = errors.New("canvas2d: manager closed")
)
