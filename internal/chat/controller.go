package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glovera/consult/internal/catalog"
	"github.com/glovera/consult/internal/llm"
	"github.com/glovera/consult/internal/profile"
	"github.com/glovera/consult/internal/telemetry"
	"github.com/glovera/consult/internal/tools"
	"github.com/glovera/consult/internal/translator"
)

// Translator turns a natural-language sub-query into a catalog filter.
type Translator interface {
	Translate(ctx context.Context, query string, prof profile.Profile) (*catalog.Filter, error)
}

// Lookup executes a catalog filter and returns the match count and the
// matching documents.
type Lookup interface {
	Find(ctx context.Context, filter *catalog.Filter) (int, []catalog.Document, error)
}

const defaultMaxTokens = 2000

// Controller owns one conversation's message history and drives the
// turn loop: it requests completions, detects tool-call requests,
// dispatches them, and folds results back into the conversation.
//
// A Controller is built per request from persisted history and is not
// safe for concurrent turns on the same instance; callers serialize
// turns per session.
type Controller struct {
	client     llm.Client
	registry   *tools.Registry
	translator Translator
	lookup     Lookup

	model     string
	prof      profile.Profile
	maxTokens int

	// toolsOnFollowUp re-enables tools on the post-tool completion.
	// Off by default, which prevents recursive tool calls.
	toolsOnFollowUp bool

	messages []Message
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithSystemPrompt seeds the history with a system instruction.
func WithSystemPrompt(prompt string) Option {
	return func(c *Controller) {
		if prompt != "" {
			c.messages = []Message{{Role: llm.RoleSystem, Content: prompt, Timestamp: c.now()}}
		}
	}
}

// WithProfile attaches the user's profile, passed through to the
// translator on catalog queries.
func WithProfile(prof profile.Profile) Option {
	return func(c *Controller) { c.prof = prof }
}

// WithToolsOnFollowUp keeps tools enabled on the completion that
// answers from tool results.
func WithToolsOnFollowUp() Option {
	return func(c *Controller) { c.toolsOnFollowUp = true }
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) Option {
	return func(c *Controller) { c.maxTokens = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a conversation controller. All collaborators
// are injected; their lifecycle belongs to the caller.
func NewController(client llm.Client, registry *tools.Registry, tr Translator, lookup Lookup, model string, opts ...Option) *Controller {
	c := &Controller{
		client:     client,
		registry:   registry,
		translator: tr,
		lookup:     lookup,
		model:      model,
		maxTokens:  defaultMaxTokens,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start appends the assistant's opening message. It does not call the
// model; after Start the history is [system?, assistant].
func (c *Controller) Start(initialMessage string) {
	c.append(llm.RoleAssistant, initialMessage)
}

// Restore replaces the in-memory history with a persisted one. The
// single-first-system invariant is enforced: a history with a system
// message anywhere but index 0, or with more than one, is rejected.
func (c *Controller) Restore(messages []Message) error {
	for i, m := range messages {
		if m.Role == llm.RoleSystem && i != 0 {
			return &InvalidInputError{Reason: fmt.Sprintf("system message at index %d, must be first and unique", i)}
		}
	}
	c.messages = make([]Message, len(messages))
	copy(c.messages, messages)
	return nil
}

// History returns a read-only snapshot of the message history.
func (c *Controller) History() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// SubmitUserTurn appends the user's message and resolves one turn. On
// success the final assistant reply is returned and appended; on any
// failure the history is exactly as it was before the call.
func (c *Controller) SubmitUserTurn(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &InvalidInputError{Reason: "empty user message"}
	}

	snapshot := len(c.messages)
	c.append(llm.RoleUser, text)

	reply, err := c.resolveTurn(ctx, text)
	if err != nil {
		c.messages = c.messages[:snapshot]
		telemetry.TurnsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return "", err
	}

	telemetry.TurnsTotal.WithLabelValues("ok").Inc()
	return reply, nil
}

func (c *Controller) resolveTurn(ctx context.Context, userText string) (string, error) {
	resp, err := c.complete(ctx, true, "turn")
	if err != nil {
		return "", &ModelCallError{Err: err}
	}

	// Direct text content wins even when tool calls are also present.
	if resp.Content != "" {
		c.append(llm.RoleAssistant, resp.Content)
		return resp.Content, nil
	}

	if len(resp.ToolCalls) == 0 {
		return "", &ModelCallError{Err: fmt.Errorf("completion returned neither content nor tool calls")}
	}

	call, kind, ok := c.firstRecognized(resp.ToolCalls)
	if !ok {
		return "", &tools.ArgumentParseError{
			Tool: resp.ToolCalls[0].Name,
			Err:  fmt.Errorf("unrecognized tool"),
		}
	}

	switch kind {
	case tools.KindCatalogSearch:
		return c.runCatalogSearch(ctx, call, userText)
	case tools.KindEndConversation:
		telemetry.ToolInvocations.WithLabelValues(call.Name).Inc()
		c.append(llm.RoleAssistant, EndSentinel)
		return EndSentinel, nil
	default:
		return "", &tools.ArgumentParseError{Tool: call.Name, Err: fmt.Errorf("unhandled tool kind %d", kind)}
	}
}

// runCatalogSearch performs the full tool round trip: parse arguments,
// translate, look up, fold the result into a synthetic user message,
// and request the follow-up completion.
func (c *Controller) runCatalogSearch(ctx context.Context, call llm.ToolCall, userText string) (string, error) {
	telemetry.ToolInvocations.WithLabelValues(call.Name).Inc()

	args, err := tools.ParseCatalogSearchArgs(call)
	if err != nil {
		return "", err
	}

	filter, err := c.translator.Translate(ctx, args.Query, c.prof)
	if err != nil {
		return "", err
	}

	count, docs, err := c.lookup.Find(ctx, filter)
	if err != nil {
		return "", err
	}
	telemetry.CatalogResults.Observe(float64(count))

	c.logger.Info("catalog tool executed",
		"query", args.Query,
		"filter", filter.String(),
		"matches", count,
	)

	c.append(llm.RoleUser, followUpInstruction(userText, formatToolResult(count, docs, filter)))

	resp, err := c.complete(ctx, c.toolsOnFollowUp, "follow_up")
	if err != nil {
		return "", &ModelCallError{Err: err}
	}
	if resp.Content == "" {
		return "", &ModelCallError{Err: fmt.Errorf("follow-up completion returned no content")}
	}

	c.append(llm.RoleAssistant, resp.Content)
	return resp.Content, nil
}

func (c *Controller) complete(ctx context.Context, withTools bool, purpose string) (*llm.ChatResponse, error) {
	req := llm.ChatRequest{
		Model:     c.model,
		Messages:  c.wireMessages(),
		MaxTokens: c.maxTokens,
	}
	temperature := 0.0
	req.Temperature = &temperature
	if withTools {
		req.Tools = c.registry.Definitions()
	}

	start := c.now()
	resp, err := c.client.Chat(ctx, req)
	telemetry.ModelCallDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
	return resp, err
}

// firstRecognized returns the first tool call whose name resolves in
// the registry. Remaining calls are ignored: only the first recognized
// call of a completion is honored.
func (c *Controller) firstRecognized(calls []llm.ToolCall) (llm.ToolCall, tools.Kind, bool) {
	for _, call := range calls {
		if kind, ok := c.registry.Resolve(call.Name); ok {
			return call, kind, true
		}
	}
	return llm.ToolCall{}, 0, false
}

func (c *Controller) wireMessages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func (c *Controller) append(role llm.Role, content string) {
	c.messages = append(c.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: c.now().UTC(),
	})
}

// formatToolResult renders a lookup result for the follow-up prompt.
func formatToolResult(count int, docs []catalog.Document, filter *catalog.Filter) string {
	data, err := json.Marshal(docs)
	if err != nil {
		data = []byte("[]")
	}
	return fmt.Sprintf("Found %d documents matching filter %s, data: %s", count, filter.String(), data)
}

func outcomeLabel(err error) string {
	switch {
	case IsModelCallError(err):
		return "model_call_error"
	case tools.IsArgumentParseError(err):
		return "tool_argument_parse_error"
	case catalog.IsLookupError(err):
		return "lookup_error"
	case IsInvalidInputError(err):
		return "invalid_input"
	case translator.IsTranslationError(err):
		return "translation_error"
	default:
		return "error"
	}
}
