package obslog_test

import (
	"bytes"
	"testing"

	"github.com/reviewbridge/reviewbridge/internal/obslog"
)

func TestStdLoggerLevelsArePrefixed(t *testing.T) {
	var buf bytes.Buffer
	l := obslog.NewStdLoggerFor(&buf)

	l.LogInfo("starting up", map[string]any{"kind": "plan"})
	l.LogWarning("slow turn", nil)
	l.LogError("turn failed", map[string]any{"code": "TIMEOUT"})

	out := buf.String()
	for _, want := range []string{"info: starting up", "warning: slow turn", "error: turn failed"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerInterfaceSatisfiedByStdLogger(t *testing.T) {
	var _ obslog.Logger = obslog.NewStdLogger()
}
