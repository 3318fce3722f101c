package install

import "errors"

// Sentinel errors for install operations.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrFetch indicates a download failed or returned a non-2xx status.
	ErrFetch = errors.New("install: fetch failed")

	// ErrUnpack indicates the archive could not be unpacked.
	ErrUnpack = errors.New("install: cannot unpack archive")

	// ErrMetadata indicates an invalid metadata document.
	ErrMetadata = errors.New("install: invalid metadata")

	// ErrAlreadyInstalled indicates a family with the label already exists.
	ErrAlreadyInstalled = errors.New("install: already installed")

	// ErrInvalidConfiguration indicates a configuration that cannot be installed.
	ErrInvalidConfiguration = errors.New("install: invalid configuration")

	// ErrLabelRequired indicates a local install without a label.
	ErrLabelRequired = errors.New("install: label required when installing from local files")
)
