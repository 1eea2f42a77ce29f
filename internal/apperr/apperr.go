// Package apperr holds the error taxonomy shared by the configuration and
// publishing pipeline.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

const (
	CodeMissingRequiredField = "MissingRequiredField"
	CodeInvalidMediaURL      = "InvalidMediaUrl"
	CodeInvalidButtonFormat  = "InvalidButtonFormat"
	CodeLabelTooLong         = "LabelTooLong"
	CodeInvalidButtonURL     = "InvalidButtonUrl"
	CodeTooManyButtons       = "TooManyButtons"
	CodeInvalidSnowflake     = "InvalidSnowflake"
	CodeInvalidField         = "InvalidField"
	CodeEmbedNotFound        = "EmbedNotFound"
	CodePublishFailed        = "PublishFailed"
	CodePersistFailed        = "PersistFailed"
	CodeStoreUnavailable     = "StoreUnavailable"
	CodeIdentityLookupFailed = "IdentityLookupFailed"
	CodeBotNotInGuild        = "BotNotInGuild"
	CodeDirectoryFailed      = "DirectoryLookupFailed"
	CodeNoSession            = "NoSession"
	CodeDenied               = "Denied"
)

// Error is a classified failure. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code, so sentinel-style
// comparisons work through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(code, field, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Code: CodeNoSession, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeDenied, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Upstream(code, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: code, Message: message, Err: err}
}

// As extracts an *Error from err. Unclassified errors come back as a
// generic upstream failure.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return Upstream("Internal", "internal error", err)
}

// CodeOf returns the code of a classified error, or "" otherwise.
func CodeOf(err error) string {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}
