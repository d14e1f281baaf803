package identify

import "errors"

var (
	// ErrNoDiseaseFound is returned when the model reports nothing to identify.
	ErrNoDiseaseFound = errors.New("no pest or disease found in image")

	// ErrParse is returned when the model reply is not a valid result.
	ErrParse = errors.New("failed to parse model response")

	// ErrInvalidImage is returned for payloads that are not a supported image.
	ErrInvalidImage = errors.New("invalid image")
)
