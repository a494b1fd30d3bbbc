package application

import (
	"context"
	"errors"
)

var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("decode failure")
	ErrShape     = errors.New("unexpected response shape")
)

// FailureMessage is the only error text shown to the reader of the page.
const FailureMessage = "Failed to fetch data from Elasticsearch"

type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindDecode    ErrorKind = "decode"
	ErrorKindShape     ErrorKind = "shape"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindUnknown   ErrorKind = "unknown"
)

func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, context.Canceled):
		return ErrorKindCanceled
	case errors.Is(err, ErrShape):
		return ErrorKindShape
	case errors.Is(err, ErrDecode):
		return ErrorKindDecode
	case errors.Is(err, ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTransport
	default:
		return ErrorKindUnknown
	}
}
