// Package orchestrator ties message intake, relevance selection and tool
// execution into a single turn-handling façade.
//
// The façade never fabricates an answer. When no tool matches, a turn
// resolves to an empty selection; when a tool fails, the failure is reported
// in the turn's records rather than papered over.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mcpbridge/mcpbridge/internal/model"
	"github.com/mcpbridge/mcpbridge/internal/service/executor"
	"github.com/mcpbridge/mcpbridge/internal/service/registry"
	"github.com/mcpbridge/mcpbridge/internal/telemetry"
	"github.com/mcpbridge/mcpbridge/internal/toolschema"
)

// Message is one normalized inbound chat message.
type Message struct {
	Text      string
	ChannelID string
	UserID    string
	ThreadID  string
}

// TurnResult is the outcome of handling one message.
type TurnResult struct {
	// SelectedToolIDs lists the tools chosen for the turn, in the order
	// they ran. Empty means no tool was relevant.
	SelectedToolIDs []string

	// Records holds one execution record per selected tool.
	Records []model.ExecutionRecord

	Started  time.Time
	Duration time.Duration
}

// FailedCount returns the number of failed executions in the turn.
func (t *TurnResult) FailedCount() int {
	n := 0
	for _, rec := range t.Records {
		if !rec.Success {
			n++
		}
	}
	return n
}

// Config holds the collaborators of an Orchestrator.
type Config struct {
	Tools    *registry.ToolRegistry
	Engine   *executor.Engine
	Selector *Selector
	Metrics  telemetry.CustomMetrics
	Logger   *zap.Logger
}

// Orchestrator handles inbound messages end to end.
type Orchestrator struct {
	tools    *registry.ToolRegistry
	engine   *executor.Engine
	selector *Selector
	metrics  telemetry.CustomMetrics
	logger   *zap.Logger
}

// New creates an orchestrator.
func New(c *Config) *Orchestrator {
	o := &Orchestrator{
		tools:    c.Tools,
		engine:   c.Engine,
		selector: c.Selector,
		metrics:  c.Metrics,
		logger:   c.Logger,
	}
	if o.selector == nil {
		o.selector = NewSelector(nil)
	}
	if o.metrics == nil {
		o.metrics = telemetry.NewNoopCustomMetrics()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// HandleMessage runs one turn: select the relevant tools among those visible
// in the message's channel, execute them in selection order and collect the
// per-tool records. Tool failures do not abort the turn.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg Message) *TurnResult {
	started := time.Now()

	candidates := o.tools.ListForChannel(msg.ChannelID)
	selected := o.selector.Select(msg.Text, candidates)

	result := &TurnResult{Started: started}
	for _, tool := range selected {
		result.SelectedToolIDs = append(result.SelectedToolIDs, tool.ID)

		input := o.buildInput(tool, msg.Text)
		exec := o.engine.Execute(ctx, tool.ID, input)
		result.Records = append(result.Records, exec.Record())
	}
	result.Duration = time.Since(started)

	o.metrics.RecordTurn(ctx, msg.ChannelID, len(selected), result.FailedCount() > 0)
	o.logger.Info("handled turn",
		zap.String("channel_id", msg.ChannelID),
		zap.Int("selected", len(selected)),
		zap.Int("failed", result.FailedCount()),
		zap.Duration("duration", result.Duration),
	)
	return result
}

// buildInput derives a call payload for the tool from the message text,
// honoring the tool's declared signature. Fields the heuristics cannot fill
// are left absent so that validation reports them instead of guessing.
func (o *Orchestrator) buildInput(tool *model.Tool, text string) map[string]any {
	sig := toolschema.Translate(tool.InputSchema)
	if sig.Opaque() {
		return map[string]any{"input": text}
	}

	input := make(map[string]any)
	for _, field := range sig.Fields {
		switch field.Name {
		case "action":
			if action := extractAction(text, field); action != "" {
				input["action"] = action
			}
		case "path":
			if path := extractPath(text); path != "" {
				input["path"] = path
			}
		case "query":
			input["query"] = stripQueryPrefix(text)
		case "text", "message", "input":
			input[field.Name] = text
		}
	}
	return input
}

// queryPrefixes are leading phrases stripped from search-style requests.
var queryPrefixes = []string{
	"search for", "search", "look up", "google", "find online", "what is",
}

func stripQueryPrefix(text string) string {
	trimmed := strings.TrimSpace(text)
	lowered := strings.ToLower(trimmed)
	for _, prefix := range queryPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return trimmed
}

// extractAction picks the first enum value of the field that occurs as a
// word in the message. Non-enum action fields get no guess.
func extractAction(text string, field toolschema.Field) string {
	if field.Kind != toolschema.KindEnum {
		return ""
	}
	words := tokenize(text)
	for _, allowed := range field.Enum {
		for _, w := range words {
			if w == allowed {
				return allowed
			}
		}
	}
	return ""
}

// extractPath returns the first token that looks like a file path: it
// contains a slash or a dot-separated extension.
func extractPath(text string) string {
	for _, w := range tokenize(text) {
		if strings.Contains(w, "/") {
			return w
		}
		if i := strings.LastIndex(w, "."); i > 0 && i < len(w)-1 {
			return w
		}
	}
	return ""
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.Trim(f, `.,:;!?"'`+"`"))
	}
	return out
}

// ToolBinding is the channel-scoped, invocable surface of one tool, handed
// to transports that expose tools directly.
type ToolBinding struct {
	ID          string
	Name        string
	Description string
	Signature   toolschema.Signature

	// Invoke runs the bound tool with an explicit payload.
	Invoke func(ctx context.Context, input map[string]any) executor.Result
}

// Bindings returns one invocable binding per tool visible in the channel.
func (o *Orchestrator) Bindings(channelID string) []ToolBinding {
	tools := o.tools.ListForChannel(channelID)
	out := make([]ToolBinding, 0, len(tools))
	for _, tool := range tools {
		id := tool.ID
		out = append(out, ToolBinding{
			ID:          id,
			Name:        tool.Name,
			Description: tool.Description,
			Signature:   toolschema.Translate(tool.InputSchema),
			Invoke: func(ctx context.Context, input map[string]any) executor.Result {
				return o.engine.Execute(ctx, id, input)
			},
		})
	}
	return out
}
