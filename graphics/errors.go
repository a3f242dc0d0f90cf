package graphics

import "errors"

var (
	// ErrNotInitialised is the panic value for operating on a resource or
	// controller that was never successfully created.
	ErrNotInitialised = errors.New("graphics: not initialised")

	// ErrNoVideo is returned when the video subsystem has not been initialised.
	ErrNoVideo = errors.New("graphics: video subsystem not initialised")

	// ErrLocked is returned when an operation needs an unlocked pixel buffer.
	ErrLocked = errors.New("graphics: pixel buffer is locked")

	// ErrFreed is returned by backends for handles that were already released.
	ErrFreed = errors.New("graphics: handle already freed")
)
