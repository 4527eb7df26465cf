package clisurface

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
)

// readPathOrStdin resolves a `--plan`/`--diff` flag value of the
// `<path|->` shape spec.md §6 specifies: "-" reads from stdin (through
// latch, consuming the process's one stdin read for this invocation), any
// other value is a file path read directly.
func readPathOrStdin(ctx context.Context, latch *StdinLatch, stdin io.Reader, idleTimeout time.Duration, value string) (string, error) {
	if value == "-" {
		text, err := latch.Consume(ctx, stdin, idleTimeout)
		if err != nil {
			return "", err
		}
		return text, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", bridgeerr.New(bridgeerr.CodeUnknownError, "cannot read %s: %v", value, err)
	}
	return string(data), nil
}

// splitCSV splits a comma-separated flag value into a trimmed, non-empty
// slice of fields; an empty value yields a nil slice.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if field != "" {
			out = append(out, field)
		}
	}
	return out
}
