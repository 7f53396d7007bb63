package ingest

import (
	"fmt"
	"strings"

	"github.com/searchfoundry/docsearch/pkg/config"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match the InvalidInput sentinel with errors.Is.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Validator checks ingest requests against configured limits. Title is
// required; content may be the empty string (the document then has no terms)
// but is bounded in size.
type Validator struct {
	maxTitleLength int
	maxContentSize int
}

// NewValidator creates a Validator from the ingest config, falling back to
// defaults for zero values.
func NewValidator(cfg config.IngestConfig) *Validator {
	maxTitle := cfg.MaxTitleLength
	if maxTitle <= 0 {
		maxTitle = 1024
	}
	maxContent := cfg.MaxContentSize
	if maxContent <= 0 {
		maxContent = 1048576
	}
	return &Validator{maxTitleLength: maxTitle, maxContentSize: maxContent}
}

// Validate returns a ValidationError describing every failing field, or nil.
func (v *Validator) Validate(req *Request) error {
	errs := make(map[string]string)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > v.maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", v.maxTitleLength)
	}
	if len(req.Content) > v.maxContentSize {
		errs["content"] = fmt.Sprintf("content must be at most %d bytes", v.maxContentSize)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
