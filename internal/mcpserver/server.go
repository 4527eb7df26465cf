// Package mcpserver exposes the five tool-call operations of spec.md §6
// (review_plan, review_code, review_precommit, review_status,
// review_history) over github.com/modelcontextprotocol/go-sdk, the same
// transport an editor-embedded agent speaks. No example in the retrieved
// corpus constructs an MCP server (only client usage appears), so this
// package is grounded on the go-sdk's documented AddTool/Server API and on
// step-chen-agent-sets' adjacent use of the same module for PR-review
// automation, rather than on a teacher precedent — see DESIGN.md.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/reviewbridge/reviewbridge/internal/reviewhandlers"
)

const serverName = "reviewbridge"

// New builds the MCP server with every tool registered against handlers.
func New(handlers *reviewhandlers.Handlers, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_plan",
		Description: "Review an implementation plan before code is written.",
	}, reviewPlanHandler(handlers))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_code",
		Description: "Review a code diff for correctness, style, and risk.",
	}, reviewCodeHandler(handlers))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_precommit",
		Description: "Run a final precommit review of a staged or explicit diff.",
	}, reviewPrecommitHandler(handlers))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_status",
		Description: "Look up a review session's current status.",
	}, reviewStatusHandler(handlers))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_history",
		Description: "List the append-only review log for a session.",
	}, reviewHistoryHandler(handlers))

	return server
}

// Run serves the MCP server over stdio until ctx is canceled.
func Run(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

type planInput struct {
	SessionID string   `json:"session_id,omitempty" jsonschema:"existing session id to continue, if any"`
	Plan      string   `json:"plan" jsonschema:"the implementation plan text to review"`
	Context   string   `json:"context,omitempty" jsonschema:"additional context for this one request"`
	Focus     []string `json:"focus,omitempty" jsonschema:"concerns to focus the review on"`
	Depth     string   `json:"depth,omitempty" jsonschema:"quick or thorough"`
}

func reviewPlanHandler(h *reviewhandlers.Handlers) func(context.Context, *mcp.CallToolRequest, planInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input planInput) (*mcp.CallToolResult, any, error) {
		result, err := h.ReviewPlan(ctx, reviewhandlers.PlanRequest{
			SessionID: input.SessionID,
			Context:   input.Context,
			Focus:     input.Focus,
			Depth:     input.Depth,
		}, input.Plan)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(result), result, nil
	}
}

type codeInput struct {
	SessionID string   `json:"session_id,omitempty" jsonschema:"existing session id to continue, if any"`
	Diff      string   `json:"diff" jsonschema:"the unified diff to review"`
	Context   string   `json:"context,omitempty" jsonschema:"additional context for this one request"`
	Criteria  []string `json:"criteria,omitempty" jsonschema:"concerns to focus the review on"`
}

func reviewCodeHandler(h *reviewhandlers.Handlers) func(context.Context, *mcp.CallToolRequest, codeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input codeInput) (*mcp.CallToolResult, any, error) {
		result, err := h.ReviewCode(ctx, reviewhandlers.CodeRequest{
			SessionID: input.SessionID,
			Context:   input.Context,
			Criteria:  input.Criteria,
		}, input.Diff)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(result), result, nil
	}
}

type precommitInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"existing session id to continue, if any"`
	Diff      string `json:"diff,omitempty" jsonschema:"explicit diff to review; omit to auto-resolve the staged diff"`
	AutoDiff  bool   `json:"auto_diff,omitempty" jsonschema:"resolve the staged diff automatically when diff is omitted"`
}

func reviewPrecommitHandler(h *reviewhandlers.Handlers) func(context.Context, *mcp.CallToolRequest, precommitInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input precommitInput) (*mcp.CallToolResult, any, error) {
		result, err := h.ReviewPrecommit(ctx, reviewhandlers.PrecommitRequest{
			SessionID: input.SessionID,
			AutoDiff:  input.AutoDiff,
		}, input.Diff)
		if err != nil {
			// spec.md §4.13/§6: NO_STAGED_CHANGES is a non-error response
			// on the tool-call surface, unlike every other bridgeerr code.
			if be, ok := err.(*bridgeerr.Error); ok && be.Code == bridgeerr.CodeNoStagedChanges {
				noChanges := &domain.PrecommitResult{
					ReadyToCommit: false,
					Blockers:      []string{},
					Warnings:      []string{"No staged changes found"},
					SessionID:     input.SessionID,
				}
				return textResult(noChanges), noChanges, nil
			}
			return errorResult(err), nil, nil
		}
		return textResult(result), result, nil
	}
}

type statusInput struct {
	SessionID string `json:"session_id" jsonschema:"the session id to look up"`
}

func reviewStatusHandler(h *reviewhandlers.Handlers) func(context.Context, *mcp.CallToolRequest, statusInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input statusInput) (*mcp.CallToolResult, any, error) {
		sess, err := h.Status(input.SessionID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(sess), sess, nil
	}
}

type historyInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"the session id to list review log entries for; omit to list the most recent entries across every session"`
	LastN     int    `json:"last_n,omitempty" jsonschema:"when session_id is omitted, the number of most recent entries to return (default 10)"`
}

func reviewHistoryHandler(h *reviewhandlers.Handlers) func(context.Context, *mcp.CallToolRequest, historyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, any, error) {
		if input.SessionID == "" {
			entries, err := h.Recent(input.LastN)
			if err != nil {
				return errorResult(err), nil, nil
			}
			return textResult(entries), entries, nil
		}

		entries, err := h.History(input.SessionID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(entries), entries, nil
	}
}

// textResult JSON-encodes v as the single text content block of a
// successful tool-call result (spec.md §6: `{content:[{type:"text",
// text:"..."}]}`, where text is the JSON-encoded result).
func textResult(v any) *mcp.CallToolResult {
	body, err := json.Marshal(v)
	if err != nil {
		return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}}}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	be := bridgeerr.Classify("reviewbridge", err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %s", be.Code, be.Message)}},
	}
}
