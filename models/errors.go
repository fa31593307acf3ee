package models

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when no stored answers exist for a user
var ErrUserNotFound = errors.New("user data not found")

// ErrUserStoreUnavailable is returned when a user id is given but no user store is configured
var ErrUserStoreUnavailable = errors.New("user data store is not configured")

// UnknownScopeError is returned for a scope name the catalog does not define
type UnknownScopeError struct {
	Scope string
}

func (e *UnknownScopeError) Error() string {
	return fmt.Sprintf("unknown scope %q", e.Scope)
}

// PageNotFoundError is returned when a requested page number is not in the catalog
type PageNotFoundError struct {
	PageNumber int
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %d not found in catalog", e.PageNumber)
}

// InvalidPageSetError is returned for an explicit page list that is not strictly increasing
type InvalidPageSetError struct {
	Pages  []int
	Reason string
}

func (e *InvalidPageSetError) Error() string {
	return fmt.Sprintf("invalid page set %v: %s", e.Pages, e.Reason)
}

// UnregisteredTemplateError is returned when no render routine exists for a template id
type UnregisteredTemplateError struct {
	TemplateID string
}

func (e *UnregisteredTemplateError) Error() string {
	return fmt.Sprintf("no renderer registered for template %q", e.TemplateID)
}

// IllustrationNotFoundError is returned when a page's illustration cannot be resolved
type IllustrationNotFoundError struct {
	PageNumber int
	Name       string
}

func (e *IllustrationNotFoundError) Error() string {
	return fmt.Sprintf("illustration %q for page %d not found", e.Name, e.PageNumber)
}

// PDF generation stages reported by PdfGenerationError
const (
	StageDocument = "document"
	StageLaunch   = "launch"
	StageLoad     = "load"
	StageVerify   = "verify"
	StagePrint    = "print"
)

// PdfGenerationError wraps every failure of a PDF build
type PdfGenerationError struct {
	Stage string
	Err   error
}

func (e *PdfGenerationError) Error() string {
	return fmt.Sprintf("pdf generation failed at %s: %v", e.Stage, e.Err)
}

func (e *PdfGenerationError) Unwrap() error {
	return e.Err
}

// IsBuildConfigurationError reports whether err was caused by the requested scope or pages
func IsBuildConfigurationError(err error) bool {
	var scopeErr *UnknownScopeError
	var notFound *PageNotFoundError
	var invalid *InvalidPageSetError
	return errors.As(err, &scopeErr) || errors.As(err, &notFound) || errors.As(err, &invalid)
}
