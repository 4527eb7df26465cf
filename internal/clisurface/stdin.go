package clisurface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
)

// StdinLatch enforces spec.md §5's "at most one argument read from stdin
// per invocation" rule. It is constructed fresh per Execute call rather
// than held at package scope, mirroring the teacher's preference for
// request-scoped state over process-lifetime globals (see tracker_test.go's
// t.Cleanup pattern for the same idea applied to stores).
type StdinLatch struct {
	consumed bool
}

// NewStdinLatch builds an unconsumed latch.
func NewStdinLatch() *StdinLatch {
	return &StdinLatch{}
}

// Consume reads all of r until EOF or idleTimeout elapses with no new
// data, resetting the idle deadline on every chunk read (spec.md §5).
// Calling Consume a second time on the same latch is an error.
func (l *StdinLatch) Consume(ctx context.Context, r io.Reader, idleTimeout time.Duration) (string, error) {
	if l.consumed {
		return "", bridgeerr.New(bridgeerr.CodeUnknownError, "stdin already consumed by this invocation")
	}
	l.consumed = true

	if idleTimeout <= 0 {
		idleTimeout = 5 * time.Second
	}

	type readResult struct {
		n   int
		buf []byte
		err error
	}

	var out bytes.Buffer
	chunk := make([]byte, 32*1024)

	for {
		resultCh := make(chan readResult, 1)
		go func() {
			n, err := r.Read(chunk)
			b := make([]byte, n)
			copy(b, chunk[:n])
			resultCh <- readResult{n: n, buf: b, err: err}
		}()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(idleTimeout):
			return "", bridgeerr.New(bridgeerr.CodeUnknownError, "timed out waiting for stdin input after %s", idleTimeout)
		case res := <-resultCh:
			if res.n > 0 {
				out.Write(res.buf)
			}
			if res.err == io.EOF {
				return out.String(), nil
			}
			if res.err != nil {
				return "", fmt.Errorf("read stdin: %w", res.err)
			}
		}
	}
}
