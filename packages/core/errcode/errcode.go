// Package errcode defines the error kinds an extraction can terminate with.
//
// Every kind is a go-errors code. The human-readable detail is stored both as
// the error message and as the user message so hosts can show it verbatim.
package errcode

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Input validation errors (1000-1099)
const (
	InvalidField     goerrors.ErrorCode = "EXTRACT_1001"
	MissingRequestID goerrors.ErrorCode = "EXTRACT_1002"
	MissingFilter    goerrors.ErrorCode = "EXTRACT_1003"
	InvalidTransform goerrors.ErrorCode = "EXTRACT_1004"
)

// Host lookup errors (1100-1199)
const (
	RequestNotFound      goerrors.ErrorCode = "HOST_1101"
	NoResponse           goerrors.ErrorCode = "HOST_1102"
	NoSuccessfulResponse goerrors.ErrorCode = "HOST_1103"
	HostFailure          goerrors.ErrorCode = "HOST_1104"
)

// Body query errors (1200-1299)
const (
	InvalidBody    goerrors.ErrorCode = "QUERY_1201"
	InvalidQuery   goerrors.ErrorCode = "QUERY_1202"
	NoMatch        goerrors.ErrorCode = "QUERY_1203"
	AmbiguousMatch goerrors.ErrorCode = "QUERY_1204"
	InvalidMarkup  goerrors.ErrorCode = "QUERY_1205"
)

// Header errors (1300-1399)
const (
	NoHeaders      goerrors.ErrorCode = "HEADER_1301"
	HeaderNotFound goerrors.ErrorCode = "HEADER_1302"
)

// Transform errors (1400-1499)
const (
	InvalidParams goerrors.ErrorCode = "TRANSFORM_1401"
)

var names = map[goerrors.ErrorCode]string{
	InvalidField:         "InvalidField",
	MissingRequestID:     "MissingRequestId",
	MissingFilter:        "MissingFilter",
	InvalidTransform:     "InvalidTransform",
	RequestNotFound:      "RequestNotFound",
	NoResponse:           "NoResponse",
	NoSuccessfulResponse: "NoSuccessfulResponse",
	HostFailure:          "HostFailure",
	InvalidBody:          "InvalidBody",
	InvalidQuery:         "InvalidQuery",
	NoMatch:              "NoMatch",
	AmbiguousMatch:       "AmbiguousMatch",
	InvalidMarkup:        "InvalidMarkup",
	NoHeaders:            "NoHeaders",
	HeaderNotFound:       "HeaderNotFound",
	InvalidParams:        "InvalidParams",
}

// Name returns the symbolic kind name for a code, e.g. "NoMatch".
func Name(code goerrors.ErrorCode) string {
	if n, ok := names[code]; ok {
		return n
	}
	return string(code)
}

// New creates a coded error whose message is the formatted detail.
func New(code goerrors.ErrorCode, format string, args ...any) *goerrors.Error {
	msg := fmt.Sprintf(format, args...)
	return goerrors.New(code, msg).
		WithUserMessage(msg).
		WithSeverity("error")
}

// Wrap is New with an underlying cause attached.
func Wrap(cause error, code goerrors.ErrorCode, format string, args ...any) *goerrors.Error {
	msg := fmt.Sprintf(format, args...)
	return goerrors.Wrap(cause, code, msg).
		WithUserMessage(msg).
		WithSeverity("error")
}

// Code returns the code carried by err, or "" when err is not a coded error.
func Code(err error) goerrors.ErrorCode {
	var coded *goerrors.Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code goerrors.ErrorCode) bool {
	return err != nil && Code(err) == code
}

// Message returns the user-facing detail of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var coded *goerrors.Error
	if errors.As(err, &coded) {
		if msg := coded.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
