// Command cr is the reviewbridge process entry point: the spec.md §5
// "router" that treats any positional argv as CLI mode and falls back to
// the MCP tool-call server otherwise, wiring together configuration,
// storage, the prompt builder, the reviewer client, and whichever surface
// is selected. Follows the teacher's cmd/cr/main.go shape — a run() that
// returns an error, a thin main() that logs and exits — generalized from
// the teacher's provider-fan-out wiring to reviewbridge's single vendor
// SDK adapter.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/reviewbridge/reviewbridge/internal/clisurface"
	"github.com/reviewbridge/reviewbridge/internal/config"
	"github.com/reviewbridge/reviewbridge/internal/gitresolve"
	"github.com/reviewbridge/reviewbridge/internal/mcpserver"
	"github.com/reviewbridge/reviewbridge/internal/obslog"
	"github.com/reviewbridge/reviewbridge/internal/promptbuild"
	"github.com/reviewbridge/reviewbridge/internal/redact"
	"github.com/reviewbridge/reviewbridge/internal/reviewerclient"
	"github.com/reviewbridge/reviewbridge/internal/reviewhandlers"
	"github.com/reviewbridge/reviewbridge/internal/reviewstore"
	"github.com/reviewbridge/reviewbridge/internal/vendorsdk/anthropicthread"
)

// version is overridden at build time via -ldflags, following the
// teacher's internal/version convention.
var version = "dev"

const reviewerSDKName = "anthropic"

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Any positional argument routes to the CLI; zero positional argv
	// starts the tool-call server (spec.md §5: "This prevents an unknown
	// positional from silently hanging a stdio server").
	if hasPositionalArg(os.Args[1:]) {
		code := clisurface.Execute(ctx, clisurface.Dependencies{
			BuildHandlers: buildHandlers,
			Version:       version,
		}, os.Args[1:])
		os.Exit(code)
		return nil
	}

	cfg, err := config.Load(config.LoaderOptions{})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	handlers, cleanup, err := newHandlers(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcpserver.New(handlers, version)
	return mcpserver.Run(ctx, server)
}

// hasPositionalArg reports whether args contains anything other than a
// flag (spec.md §5's CLI/tool-call router). --help and --version are
// flags to cobra but still need CLI routing since they target a
// subcommand's root; treating any bare token as positional is sufficient
// since flags are always prefixed with "-".
func hasPositionalArg(args []string) bool {
	for _, a := range args {
		if a == "" {
			continue
		}
		if a[0] != '-' {
			return true
		}
		if a == "--help" || a == "-h" || a == "--version" || a == "-v" {
			return true
		}
	}
	return false
}

// buildHandlers adapts newHandlers to clisurface.HandlersFactory, loading
// config itself is the caller's job (each CLI subcommand owns --config).
func buildHandlers(cfg config.Config) (*reviewhandlers.Handlers, func(), error) {
	return newHandlers(cfg)
}

// newHandlers wires every collaborator behind reviewhandlers.Handlers from
// a resolved Config: the sqlite-backed session store, the prompt builder,
// the anthropic-backed reviewer client, the redaction engine, and the git
// diff resolver. The returned cleanup closes the store.
func newHandlers(cfg config.Config) (*reviewhandlers.Handlers, func(), error) {
	logger := obslog.NewStdLogger()

	store, err := reviewstore.Open(cfg.DBPath)
	if err != nil {
		// A broken configured DB path must not take the whole server down
		// (spec.md §5): fall back to an in-memory store and keep starting,
		// logging the loss of persistence instead.
		logger.LogWarning("failed to open configured database, falling back to in-memory store", map[string]any{
			"db_path": cfg.DBPath,
			"error":   err.Error(),
		})
		store, err = reviewstore.Open(":memory:")
		if err != nil {
			return nil, nil, fmt.Errorf("open fallback in-memory store: %w", err)
		}
	}

	builder, err := promptbuild.NewBuilder()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	adapter := anthropicthread.New(apiKey, "")
	client := reviewerclient.New(adapter, cfg.TimeoutSeconds)

	repoDir, err := os.Getwd()
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("determine working directory: %w", err)
	}
	gitResolver := gitresolve.NewResolver(repoDir)

	handlers := reviewhandlers.New(cfg, builder, client, store, redact.NewEngine(), gitResolver, logger, reviewerSDKName)
	return handlers, func() { store.Close() }, nil
}
