package uploads

import "errors"

// Sentinel errors for image upload operations.
var (
	// ErrNoFilePart is returned when the upload form carries no file field.
	ErrNoFilePart = errors.New("No file part")

	// ErrNoSelectedFile is returned when the file field has an empty filename.
	ErrNoSelectedFile = errors.New("No selected file")

	// ErrInvalidFileType is returned when the extension is not an allowed image type.
	ErrInvalidFileType = errors.New("Invalid file type")

	// ErrNotFound is returned when the requested image does not exist.
	ErrNotFound = errors.New("image not found")

	// ErrInvalidImageID is returned when the image ID is not a UUID.
	ErrInvalidImageID = errors.New("invalid image ID")

	// ErrStorageUnavailable is returned when the module has not been started.
	ErrStorageUnavailable = errors.New("image storage unavailable")
)
