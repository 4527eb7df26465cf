// Package clisurface implements the terminal front end of spec.md §6: the
// review-plan/review-code/review-precommit subcommands, their exit-code
// contract, stdin/file input resolution, and TTY-aware colored output. It
// is built with spf13/cobra following the teacher's internal/adapter/cli
// package, generalized from the teacher's single "review branch" command
// to three review-kind subcommands with no branch/git-ref concept.
package clisurface

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewbridge/reviewbridge/internal/config"
	"github.com/reviewbridge/reviewbridge/internal/reviewhandlers"
)

// HandlersFactory builds a Handlers value (and a cleanup func, typically
// closing the session store) from the configuration resolved for one
// invocation. Each subcommand owns its own --config flag (spec.md §6), so
// the factory is invoked fresh per Execute call rather than once at
// process startup.
type HandlersFactory func(cfg config.Config) (handlers *reviewhandlers.Handlers, cleanup func(), err error)

// Dependencies captures the collaborators the CLI needs from main.
type Dependencies struct {
	BuildHandlers HandlersFactory
	Stdin         io.Reader
	Stdout        *os.File
	Stderr        *os.File
	Version       string
}

// Execute builds the root command, runs it against args, and returns the
// process exit code spec.md §6 specifies per subcommand. Any error other
// than *ExitError is printed to deps.Stderr and maps to exit code 1.
func Execute(ctx context.Context, deps Dependencies, args []string) int {
	root := NewRootCommand(deps)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if asExitError(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(deps.Stderr, exitErr.Err.Error())
		}
		return exitErr.Code
	}

	fmt.Fprintln(deps.Stderr, err.Error())
	return 1
}

func asExitError(err error, target **ExitError) bool {
	ee, ok := err.(*ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}

// NewRootCommand builds the root Cobra command with the three review
// subcommands registered.
func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:     "cr",
		Short:   "Review-orchestration CLI mediating plan, code, and precommit reviews",
		Version: deps.Version,
	}
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	root.AddCommand(newReviewPlanCommand(deps))
	root.AddCommand(newReviewCodeCommand(deps))
	root.AddCommand(newReviewPrecommitCommand(deps))

	return root
}

func newReviewPlanCommand(deps Dependencies) *cobra.Command {
	var planPath string
	var focusCSV string
	var depth string
	var sessionID string
	var configDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "review-plan",
		Short: "Review an implementation plan before code is written",
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth != "" && depth != "quick" && depth != "thorough" {
				return fmt.Errorf("--depth must be %q or %q, got %q", "quick", "thorough", depth)
			}
			if planPath == "" {
				return fmt.Errorf("--plan is required")
			}

			cfg, err := config.Load(config.LoaderOptions{Dir: configDir})
			if err != nil {
				return err
			}

			plan, err := readPathOrStdin(cmd.Context(), NewStdinLatch(), deps.Stdin, idleTimeout(cfg), planPath)
			if err != nil {
				return err
			}

			handlers, cleanup, err := deps.BuildHandlers(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := handlers.ReviewPlan(cmd.Context(), reviewhandlers.PlanRequest{
				SessionID: sessionID,
				Focus:     splitCSV(focusCSV),
				Depth:     depth,
			}, plan)
			if err != nil {
				return err
			}

			if jsonOut {
				return renderJSON(deps.Stdout, result)
			}
			renderPlan(deps.Stdout, newColorizer(deps.Stdout), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to the plan file, or - to read from stdin")
	cmd.Flags().StringVar(&focusCSV, "focus", "", "Comma-separated list of concerns to focus the review on")
	cmd.Flags().StringVar(&depth, "depth", "", "Review depth: quick or thorough")
	cmd.Flags().StringVar(&sessionID, "session", "", "Existing session id to continue")
	cmd.Flags().StringVar(&configDir, "config", "", "Directory containing .reviewbridge.json (defaults to cwd)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON instead of formatted text")

	return cmd
}

func newReviewCodeCommand(deps Dependencies) *cobra.Command {
	var diffPath string
	var focusCSV string
	var sessionID string
	var configDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "review-code",
		Short: "Review a code diff for correctness, style, and risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			if diffPath == "" {
				return fmt.Errorf("--diff is required")
			}

			cfg, err := config.Load(config.LoaderOptions{Dir: configDir})
			if err != nil {
				return err
			}

			diff, err := readPathOrStdin(cmd.Context(), NewStdinLatch(), deps.Stdin, idleTimeout(cfg), diffPath)
			if err != nil {
				return err
			}

			handlers, cleanup, err := deps.BuildHandlers(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := handlers.ReviewCode(cmd.Context(), reviewhandlers.CodeRequest{
				SessionID: sessionID,
				Criteria:  splitCSV(focusCSV),
			}, diff)
			if err != nil {
				return err
			}

			if jsonOut {
				return renderJSON(deps.Stdout, result)
			}
			renderCode(deps.Stdout, newColorizer(deps.Stdout), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&diffPath, "diff", "", "Path to the unified diff file, or - to read from stdin")
	cmd.Flags().StringVar(&focusCSV, "focus", "", "Comma-separated list of concerns to focus the review on")
	cmd.Flags().StringVar(&sessionID, "session", "", "Existing session id to continue")
	cmd.Flags().StringVar(&configDir, "config", "", "Directory containing .reviewbridge.json (defaults to cwd)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON instead of formatted text")

	return cmd
}

func newReviewPrecommitCommand(deps Dependencies) *cobra.Command {
	var diffPath string
	var sessionID string
	var configDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "review-precommit",
		Short: "Run a final precommit review of the staged or an explicit diff",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoaderOptions{Dir: configDir})
			if err != nil {
				return err
			}

			var diff string
			autoDiff := true
			if diffPath != "" {
				diff, err = readPathOrStdin(cmd.Context(), NewStdinLatch(), deps.Stdin, idleTimeout(cfg), diffPath)
				if err != nil {
					return err
				}
				autoDiff = false
			}

			handlers, cleanup, err := deps.BuildHandlers(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := handlers.ReviewPrecommit(cmd.Context(), reviewhandlers.PrecommitRequest{
				SessionID: sessionID,
				AutoDiff:  autoDiff,
			}, diff)
			if err != nil {
				return err
			}

			if jsonOut {
				if err := renderJSON(deps.Stdout, result); err != nil {
					return err
				}
			} else {
				renderPrecommit(deps.Stdout, newColorizer(deps.Stdout), result)
			}

			if reviewhandlers.IsBlocked(cfg, result) {
				return &ExitError{Code: 2, Err: nil}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&diffPath, "diff", "", "Path to an explicit diff file, or - to read from stdin; omit to auto-resolve the staged diff")
	cmd.Flags().StringVar(&sessionID, "session", "", "Existing session id to continue")
	cmd.Flags().StringVar(&configDir, "config", "", "Directory containing .reviewbridge.json (defaults to cwd)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON instead of formatted text")

	return cmd
}

func idleTimeout(cfg config.Config) time.Duration {
	seconds := cfg.IdleStdinTimeoutSeconds
	if seconds <= 0 {
		seconds = 5
	}
	return time.Duration(seconds) * time.Second
}
