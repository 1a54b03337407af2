// Package agent runs the tool-calling loop that turns a user message into
// an assistant answer, executing task tools along the way.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/taskloop-ai/taskchat/internal/llm"
	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/tools"
	"github.com/taskloop-ai/taskchat/pkg/logger"
	"github.com/taskloop-ai/taskchat/pkg/metrics"
)

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// Result is the outcome of one agent run: the answer text plus the tool
// invocations made on the way, in execution order.
type Result struct {
	Message   string
	ToolCalls []model.ToolCallRecord
	Degraded  bool
}

// Orchestrator drives the two-phase model loop: one round-trip with tools
// offered, sequential execution of whatever the model requested, then one
// round-trip without tools to produce the final answer.
type Orchestrator struct {
	client   llm.Client
	registry *tools.Registry
	logger   *logger.Logger
}

// NewOrchestrator creates an orchestrator over the given model client and
// tool registry.
func NewOrchestrator(client llm.Client, registry *tools.Registry, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		client:   client,
		registry: registry,
		logger:   log,
	}
}

// Run executes one agent turn for the authenticated user. history is the
// prior transcript of the conversation, oldest first, not including the
// new message. An error is returned only when the first model round-trip
// fails, before any tool has run; every later failure is absorbed into a
// degraded but successful Result so committed side effects are never
// reported as errors.
func (o *Orchestrator) Run(ctx context.Context, userID int64, message string, history []model.Message) (*Result, error) {
	ctx, span := otel.Tracer("agent").Start(ctx, "agent.run")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: string(model.RoleSystem), Content: systemPrompt})
	for _, m := range history {
		// Tool-role rows and tool_call metadata are not replayed; the
		// model only needs the user/assistant text of prior turns.
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			continue
		}
		messages = append(messages, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: string(model.RoleUser), Content: message})

	turn, err := o.complete(ctx, &llm.CompletionRequest{
		Messages:    messages,
		Tools:       o.registry.Schemas(),
		ToolChoice:  llm.ToolChoiceAuto,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	if len(turn.ToolCalls) == 0 {
		return &Result{Message: turn.Content}, nil
	}

	records := o.execute(ctx, userID, turn.ToolCalls)
	span.SetAttributes(attribute.Int("agent.tool_calls", len(records)))

	// The assistant's tool-request turn and one tool-role turn per call,
	// correlated by call ID, are appended before the summarization pass.
	messages = append(messages, llm.ChatMessage{
		Role:      string(model.RoleAssistant),
		Content:   turn.Content,
		ToolCalls: turn.ToolCalls,
	})
	for i, call := range turn.ToolCalls {
		payload, err := json.Marshal(records[i].Result)
		if err != nil {
			payload = []byte(`{"success":false,"error":"internal_error","message":"result serialization failed"}`)
		}
		messages = append(messages, llm.ChatMessage{
			Role:       string(model.RoleTool),
			Content:    string(payload),
			ToolCallID: call.ID,
		})
	}

	final, err := o.complete(ctx, &llm.CompletionRequest{
		Messages:    messages,
		ToolChoice:  llm.ToolChoiceNone,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		// Tools already ran; their effects are committed. Fall back to a
		// templated answer instead of failing the turn.
		o.logger.Warn("follow-up model call failed, returning degraded response",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		metrics.AgentDegradedTotal.Inc()
		span.RecordError(err)
		return &Result{Message: degradedResponse, ToolCalls: records, Degraded: true}, nil
	}

	return &Result{Message: final.Content, ToolCalls: records}, nil
}

// execute runs the requested tool calls strictly in the order the model
// emitted them, one at a time. Every call produces a record even when the
// arguments cannot be parsed.
func (o *Orchestrator) execute(ctx context.Context, userID int64, calls []llm.ToolCall) []model.ToolCallRecord {
	records := make([]model.ToolCallRecord, 0, len(calls))
	for _, call := range calls {
		args := map[string]any{}
		var result tools.Result
		if call.ArgumentsJSON != "" {
			if err := json.Unmarshal([]byte(call.ArgumentsJSON), &args); err != nil {
				o.logger.Warn("tool arguments are not valid JSON",
					zap.String("tool", call.Name),
					zap.Error(err),
				)
				result = tools.Result{
					"success": false,
					"error":   string(tools.ErrToolExecution),
					"message": "Tool arguments were not valid JSON",
				}
			}
		}

		if result == nil {
			// The authenticated user always wins over whatever user_id the
			// model put in the arguments.
			args["user_id"] = userID
			result = o.registry.Execute(ctx, call.Name, args)
		}

		o.logger.Info("tool executed",
			zap.String("tool", call.Name),
			zap.Int64("user_id", userID),
			zap.Bool("success", result.OK()),
		)
		records = append(records, model.ToolCallRecord{
			Tool:      call.Name,
			Arguments: args,
			Result:    map[string]any(result),
		})
	}
	return records
}

func (o *Orchestrator) complete(ctx context.Context, req *llm.CompletionRequest) (*llm.ModelTurn, error) {
	start := time.Now()
	turn, err := o.client.Complete(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ModelCallsTotal.WithLabelValues(o.client.Name(), status).Inc()
	metrics.ModelCallDuration.WithLabelValues(o.client.Name()).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.ModelTokensTotal.WithLabelValues(o.client.Name(), "input").Add(float64(turn.TokensIn))
		metrics.ModelTokensTotal.WithLabelValues(o.client.Name(), "output").Add(float64(turn.TokensOut))
	}
	return turn, err
}
