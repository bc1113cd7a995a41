package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// PageError is the base error of the page domain
type PageError struct {
	Code    string // unique code, e.g. "MISSING_URL_FIELDS"
	Message string
	Err     error
}

func (e *PageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	CodeMissingURLFields = "MISSING_URL_FIELDS"
	CodePageNotFound     = "PAGE_NOT_FOUND"
	CodeUpdateNotFound   = "UPDATE_NOT_FOUND"
	CodeBusinessNotFound = "BUSINESS_NOT_FOUND"
	CodeInvalidIntent    = "INVALID_INTENT"
	CodeInvalidPageData  = "INVALID_PAGE_DATA"
	CodeSavePage         = "SAVE_PAGE_ERROR"
	CodeRenderPage       = "RENDER_PAGE_ERROR"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// ErrPathOwned is returned by Upsert when another business owns the active
// page at the path.
var ErrPathOwned = errors.New("path owned by another business")

// ============================================
// ERROR FACTORY FUNCTIONS
// ============================================

// NewMissingURLFields reports business fields required to build page URLs.
func NewMissingURLFields(fields []string) *PageError {
	return &PageError{
		Code:    CodeMissingURLFields,
		Message: fmt.Sprintf("missing required URL fields: %s", strings.Join(fields, ", ")),
	}
}

func NewPageNotFound(id string) *PageError {
	return &PageError{
		Code:    CodePageNotFound,
		Message: fmt.Sprintf("page %s not found", id),
		Err:     ErrNotFound,
	}
}

func NewUpdateNotFound(id string) *PageError {
	return &PageError{
		Code:    CodeUpdateNotFound,
		Message: fmt.Sprintf("update %s not found", id),
		Err:     ErrNotFound,
	}
}

func NewBusinessNotFound(id string) *PageError {
	return &PageError{
		Code:    CodeBusinessNotFound,
		Message: fmt.Sprintf("business %s not found", id),
		Err:     ErrNotFound,
	}
}

func NewInvalidIntent(intent string) *PageError {
	return &PageError{
		Code:    CodeInvalidIntent,
		Message: fmt.Sprintf("invalid intent %q", intent),
	}
}

func NewInvalidPageData(err error) *PageError {
	return &PageError{
		Code:    CodeInvalidPageData,
		Message: "stored page data could not be decoded",
		Err:     err,
	}
}

func NewSavePageError(err error) *PageError {
	return &PageError{
		Code:    CodeSavePage,
		Message: "failed to save page",
		Err:     err,
	}
}

func NewRenderPageError(err error) *PageError {
	return &PageError{
		Code:    CodeRenderPage,
		Message: "failed to render page",
		Err:     err,
	}
}

// ============================================
// ERROR CHECKING FUNCTIONS
// ============================================

func hasCode(err error, code string) bool {
	var pageErr *PageError
	return errors.As(err, &pageErr) && pageErr.Code == code
}

func IsMissingURLFields(err error) bool { return hasCode(err, CodeMissingURLFields) }

func IsNotFound(err error) bool {
	return hasCode(err, CodePageNotFound) ||
		hasCode(err, CodeUpdateNotFound) ||
		hasCode(err, CodeBusinessNotFound) ||
		errors.Is(err, ErrNotFound)
}

// GetErrorCode returns the domain code or "UNKNOWN_ERROR".
func GetErrorCode(err error) string {
	var pageErr *PageError
	if errors.As(err, &pageErr) {
		return pageErr.Code
	}
	return "UNKNOWN_ERROR"
}

// MapErrorToHTTP converts a domain error into status, message and code.
func MapErrorToHTTP(err error) (int, string, string) {
	if err == nil {
		return http.StatusOK, "Success", ""
	}

	var pageErr *PageError
	if !errors.As(err, &pageErr) {
		return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
	}

	switch pageErr.Code {
	case CodeMissingURLFields:
		return http.StatusUnprocessableEntity, pageErr.Message, pageErr.Code
	case CodePageNotFound, CodeUpdateNotFound, CodeBusinessNotFound:
		return http.StatusNotFound, pageErr.Message, pageErr.Code
	case CodeInvalidIntent:
		return http.StatusBadRequest, pageErr.Message, pageErr.Code
	default:
		return http.StatusInternalServerError, pageErr.Message, pageErr.Code
	}
}
