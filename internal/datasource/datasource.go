// Package datasource defines the byte-stream source abstraction used by the
// loader stage. A source is a one-shot batch read: it is opened once per run
// and never retried.
package datasource

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable marks a fatal loader failure: the underlying file or
// endpoint could not be fetched or read. Callers test for it with errors.Is.
var ErrUnavailable = errors.New("datasource unavailable")

// Source opens a readable byte stream for a pipeline input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
