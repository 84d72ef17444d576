package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction matches every *Error.
	ErrExtraction = errors.New("extraction error")

	ErrUnsupportedLegacyFormat = errors.New("unsupported legacy format")
	ErrExtractionFailed        = errors.New("extraction failed")
	ErrEmptyExtraction         = errors.New("empty extraction")
)

// Error is returned for every extraction failure. Reason is one of the sentinels above.
type Error struct {
	Reason error
	Err    error
}

func (e *Error) Error() string {
	switch e.Reason {
	case ErrUnsupportedLegacyFormat:
		return "DOC files are not supported. Please convert to PDF or DOCX format."
	case ErrEmptyExtraction:
		return "Could not extract text from the file. The file might be corrupted or empty."
	default:
		if e.Err != nil {
			return fmt.Sprintf("Failed to parse file: %v", e.Err)
		}
		return "Failed to parse file"
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

func (e *Error) Is(target error) bool {
	return target == ErrExtraction
}

func failed(err error) error {
	return &Error{Reason: ErrExtractionFailed, Err: err}
}
