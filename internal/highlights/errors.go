package highlights

import "errors"

var (
	// ErrInvalidRange is returned for selections that are empty, reversed
	// or outside the paragraphs they name. Nothing is changed.
	ErrInvalidRange = errors.New("invalid highlight range")

	ErrInvalidColor = errors.New("invalid highlight color")

	// ErrNotPersisted wraps storage write failures. The in-memory state of
	// the document already reflects the mutation.
	ErrNotPersisted = errors.New("highlight state not persisted")

	// ErrNotLoaded is returned by mutations when the stored state of a
	// document could not be read. Nothing is written.
	ErrNotLoaded = errors.New("highlight state not loaded")
)
