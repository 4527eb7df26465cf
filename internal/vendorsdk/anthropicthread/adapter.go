// Package anthropicthread implements reviewerclient.ThreadSDK on top of
// github.com/anthropics/anthropic-sdk-go, the same client package the
// teacher's ShipItAI-style reviewer uses. The vendor SDK has no native
// concept of a resumable server-side thread id, so the adapter keeps the
// transcript in memory keyed by a google/uuid id it generates itself, and
// replays that transcript as prior messages on every resumed turn.
package anthropicthread

import (
	"context"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/reviewerclient"
)

// DefaultModel mirrors the teacher's review/reviewer.go DefaultModel
// constant, updated to the current Claude model name.
const DefaultModel = "claude-sonnet-4-20250514"

const maxTokens = 4096

type turn struct {
	role string // "user" or "assistant"
	text string
}

type thread struct {
	mu      sync.Mutex
	history []turn
}

// Adapter is the anthropic-sdk-go backed ThreadSDK implementation.
type Adapter struct {
	client  anthropic.Client
	model   string
	threads sync.Map // threadID -> *thread
}

// New builds an Adapter authenticated with apiKey. model defaults to
// DefaultModel when empty.
func New(apiKey, model string) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	return &Adapter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

var _ reviewerclient.ThreadSDK = (*Adapter)(nil)

// StartThread allocates a fresh thread id and empty transcript.
func (a *Adapter) StartThread(ctx context.Context) (string, error) {
	id := uuid.NewString()
	a.threads.Store(id, &thread{})
	return id, nil
}

// ResumeThread confirms threadID was previously started by this adapter
// instance.
func (a *Adapter) ResumeThread(ctx context.Context, threadID string) error {
	if _, ok := a.threads.Load(threadID); !ok {
		return bridgeerr.New(bridgeerr.CodeSessionNotFound, "unknown thread id %q", threadID)
	}
	return nil
}

// Run appends prompt to threadID's transcript as a user turn, invokes the
// model with the full transcript for continuity, and appends the model's
// reply as an assistant turn before returning it.
func (a *Adapter) Run(ctx context.Context, threadID, prompt string, opts reviewerclient.TurnOptions) (reviewerclient.TurnResult, error) {
	v, ok := a.threads.Load(threadID)
	if !ok {
		return reviewerclient.TurnResult{}, bridgeerr.New(bridgeerr.CodeSessionNotFound, "unknown thread id %q", threadID)
	}
	th := v.(*thread)

	th.mu.Lock()
	defer th.mu.Unlock()

	deadline := time.Duration(opts.Deadline) * time.Second
	if deadline <= 0 {
		deadline = 3 * time.Minute
	}
	turnCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var messages []anthropic.MessageParam
	for _, t := range th.history {
		if t.role == "user" {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.text)))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	message, err := a.client.Messages.New(turnCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	})
	if err != nil {
		return reviewerclient.TurnResult{}, bridgeerr.Classify("anthropic", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	th.history = append(th.history, turn{role: "user", text: prompt}, turn{role: "assistant", text: text})

	return reviewerclient.TurnResult{Text: text, ThreadID: threadID}, nil
}
