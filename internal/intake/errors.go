package intake

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every intake rejection.
	ErrValidation          = errors.New("validation error")
	ErrNoFile              = errors.New("no file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrPayloadTooLarge     = errors.New("payload too large")
)

// ValidationError carries the user-facing message for a rejected upload.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Is lets errors.Is(err, ErrValidation) match any kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func noFile() error {
	return &ValidationError{Kind: ErrNoFile, Message: "No file uploaded. Please select a PDF or DOCX file."}
}

func unsupportedType(ext string) error {
	if ext == "" {
		ext = "(none)"
	}
	return &ValidationError{
		Kind:    ErrUnsupportedFileType,
		Message: fmt.Sprintf("File type %s is not allowed. Only PDF and DOCX files are supported.", ext),
	}
}

func tooLarge() error {
	return &ValidationError{Kind: ErrPayloadTooLarge, Message: "File too large. Maximum size is 10MB."}
}

// PayloadTooLarge is the rejection used when the HTTP layer cuts off an oversized body.
func PayloadTooLarge() error {
	return tooLarge()
}
