package clisurface_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/clisurface"
	"github.com/reviewbridge/reviewbridge/internal/config"
	"github.com/reviewbridge/reviewbridge/internal/obslog"
	"github.com/reviewbridge/reviewbridge/internal/promptbuild"
	"github.com/reviewbridge/reviewbridge/internal/redact"
	"github.com/reviewbridge/reviewbridge/internal/reviewerclient"
	"github.com/reviewbridge/reviewbridge/internal/reviewhandlers"
	"github.com/reviewbridge/reviewbridge/internal/reviewstore"
)

type fakeSDK struct {
	responses []string
	calls     int
}

func (f *fakeSDK) StartThread(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (f *fakeSDK) ResumeThread(ctx context.Context, threadID string) error {
	return nil
}

func (f *fakeSDK) Run(ctx context.Context, threadID, prompt string, opts reviewerclient.TurnOptions) (reviewerclient.TurnResult, error) {
	text := f.responses[f.calls]
	f.calls++
	return reviewerclient.TurnResult{Text: text, ThreadID: threadID}, nil
}

func buildHandlersFactory(t *testing.T, responses []string) clisurface.HandlersFactory {
	t.Helper()
	return func(cfg config.Config) (*reviewhandlers.Handlers, func(), error) {
		store, err := reviewstore.Open(":memory:")
		if err != nil {
			return nil, nil, err
		}
		builder, err := promptbuild.NewBuilder()
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		client := reviewerclient.New(&fakeSDK{responses: responses}, 30)
		h := reviewhandlers.New(cfg, builder, client, store, redact.NewEngine(), nil, obslog.NewStdLogger(), "anthropic")
		return h, func() { store.Close() }, nil
	}
}

// deps builds Dependencies backed by real temp files for Stdout/Stderr, so
// colorEnabled's term.IsTerminal(fd) check has a valid descriptor to query
// (a disk file is never a TTY, so color stays off in tests). Callers read
// the files back with readBack after Execute runs.
func deps(t *testing.T, responses []string, stdin string) clisurface.Dependencies {
	t.Helper()
	dir := t.TempDir()

	outFile, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	t.Cleanup(func() { outFile.Close() })

	errFile, err := os.Create(filepath.Join(dir, "stderr"))
	require.NoError(t, err)
	t.Cleanup(func() { errFile.Close() })

	return clisurface.Dependencies{
		BuildHandlers: buildHandlersFactory(t, responses),
		Stdin:         bytes.NewBufferString(stdin),
		Stdout:        outFile,
		Stderr:        errFile,
		Version:       "test",
	}
}

func readBack(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return string(data)
}

func TestExecute_ReviewPlan_Success(t *testing.T) {
	d := deps(t, []string{`{"verdict":"approve","summary":"looks good","findings":[]}`}, "")
	planFile := writeTempFile(t, "do the thing")

	code := runExecute(t, d, []string{"review-plan", "--plan", planFile, "--config", t.TempDir()})
	assert.Equal(t, 0, code)
	assert.Contains(t, readBack(t, d.Stdout), "looks good")
}

func TestExecute_ReviewPlan_InvalidDepth(t *testing.T) {
	d := deps(t, nil, "")
	planFile := writeTempFile(t, "do the thing")

	code := runExecute(t, d, []string{"review-plan", "--plan", planFile, "--depth", "bogus", "--config", t.TempDir()})
	assert.Equal(t, 1, code)
	assert.Contains(t, readBack(t, d.Stderr), "--depth")
}

func TestExecute_ReviewPlan_MissingPlanFlag(t *testing.T) {
	d := deps(t, nil, "")

	code := runExecute(t, d, []string{"review-plan", "--config", t.TempDir()})
	assert.Equal(t, 1, code)
}

func TestExecute_ReviewCode_JSONOutput(t *testing.T) {
	d := deps(t, []string{`{"verdict":"approve","summary":"fine","findings":[]}`}, "")
	diffFile := writeTempFile(t, "diff --git a/x b/x\n@@ -1,1 +1,1 @@\n-a\n+b\n")

	code := runExecute(t, d, []string{"review-code", "--diff", diffFile, "--json", "--config", t.TempDir()})
	assert.Equal(t, 0, code)
	assert.Contains(t, readBack(t, d.Stdout), `"verdict": "approve"`)
}

func TestExecute_ReviewPrecommit_ReadyExitsZero(t *testing.T) {
	d := deps(t, []string{`{"ready_to_commit":true,"blockers":[],"warnings":[]}`}, "")
	diffFile := writeTempFile(t, "diff --git a/x b/x\n@@ -1,1 +1,1 @@\n-a\n+b\n")

	code := runExecute(t, d, []string{"review-precommit", "--diff", diffFile, "--config", t.TempDir()})
	assert.Equal(t, 0, code)
	assert.Contains(t, readBack(t, d.Stdout), "READY TO COMMIT")
}

func TestExecute_ReviewPrecommit_BlockedExitsTwo(t *testing.T) {
	d := deps(t, []string{`{"ready_to_commit":false,"blockers":["missing error handling"],"warnings":[]}`}, "")
	diffFile := writeTempFile(t, "diff --git a/x b/x\n@@ -1,1 +1,1 @@\n-a\n+b\n")

	code := runExecute(t, d, []string{"review-precommit", "--diff", diffFile, "--config", t.TempDir()})
	assert.Equal(t, 2, code)
	out := readBack(t, d.Stdout)
	assert.Contains(t, out, "COMMIT BLOCKED")
	assert.Contains(t, out, "missing error handling")
}

func TestExecute_ReviewPrecommit_NoResolverIsError(t *testing.T) {
	d := deps(t, nil, "")

	code := runExecute(t, d, []string{"review-precommit", "--config", t.TempDir()})
	assert.Equal(t, 1, code)
}

func TestExecute_HelpExitsZero(t *testing.T) {
	d := deps(t, nil, "")
	code := runExecute(t, d, []string{"--help"})
	assert.Equal(t, 0, code)
}

func runExecute(t *testing.T, d clisurface.Dependencies, args []string) int {
	t.Helper()
	return clisurface.Execute(context.Background(), d, args)
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
