package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/llm"
	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// ErrToolLoopExceeded reports a model that kept requesting tools past the
// safety cap.
var ErrToolLoopExceeded = errors.New("tool loop exceeded iteration cap")

// defaultMaxIterations caps the model-call loop. The loop terminates
// naturally when the model stops requesting tools; the cap only guards
// against a misbehaving model.
const defaultMaxIterations = 10

// Result is the outcome of processing one user message.
type Result struct {
	// Text is the model's final natural-language answer. May be empty when
	// the reply carried no text block.
	Text string

	// Properties is the most recently found nonempty batch of this request,
	// empty when no tool was invoked.
	Properties []model.Property

	// UpdatedHistory is the trimmed turn sequence to persist.
	UpdatedHistory []model.Turn
}

// Options tune the orchestrator.
type Options struct {
	Model         string
	MaxTokens     int
	MaxIterations int
	CallTimeout   time.Duration
}

// Orchestrator drives repeated model calls, interleaving tool execution,
// until a terminal natural-language response is produced.
type Orchestrator struct {
	llm      llm.Client
	executor *Executor
	logger   *logger.Logger
	opts     Options
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(client llm.Client, executor *Executor, log *logger.Logger, opts Options) *Orchestrator {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultMaxIterations
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	return &Orchestrator{llm: client, executor: executor, logger: log, opts: opts}
}

// Process runs one user message through the model with tool use.
//
// The stored history is sanitized and trimmed before submission. While the
// model's stop reason requests tools, every tool_use block of the reply is
// executed in order and answered with one tool_result each, carried in a
// single following user turn. When the model stops requesting tools, the
// first text block becomes the final answer. Any model or tool error aborts
// the whole request; no partial history is returned.
func (o *Orchestrator) Process(ctx context.Context, userMessage string, history []model.Turn) (*Result, error) {
	turns := model.TrimHistory(Sanitize(history, o.logger), model.MaxHistoryTurns)
	turns = append(turns, model.NewUserText(userMessage))

	var foundProperties []model.Property

	for iteration := 0; iteration < o.opts.MaxIterations; iteration++ {
		resp, err := o.callModel(ctx, turns)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		o.logger.Debug("model responded",
			zap.String("stop_reason", string(resp.StopReason)),
			zap.Int("tokens_in", resp.TokensIn),
			zap.Int("tokens_out", resp.TokensOut),
		)

		if resp.StopReason != llm.StopReasonToolUse {
			// Terminal reply.
			turns = append(turns, model.Turn{Role: model.RoleAssistant, Content: resp.Content})
			return &Result{
				Text:           model.Turn{Content: resp.Content}.FirstText(),
				Properties:     foundProperties,
				UpdatedHistory: model.TrimHistory(turns, model.MaxHistoryTurns),
			}, nil
		}

		// The model may request several tools in one turn. All of them run
		// in the order returned, and every one gets a tool_result in the
		// same following user turn, keyed to its id.
		var results []model.ContentBlock
		for _, block := range resp.Content {
			if block.Type != model.BlockTypeToolUse {
				continue
			}
			outcome, err := o.executor.Execute(ctx, block.Name, block.Input)
			if err != nil {
				return nil, err
			}
			if len(outcome.Properties) > 0 {
				// Last nonempty batch wins; batches are not merged.
				foundProperties = outcome.Properties
			}
			results = append(results, model.ContentBlock{
				Type:      model.BlockTypeToolResult,
				ToolUseID: block.ID,
				Content:   outcome.Summary,
			})
		}

		turns = append(turns, model.Turn{Role: model.RoleAssistant, Content: resp.Content})
		turns = append(turns, model.NewToolResults(results))
	}

	o.logger.Error("model kept requesting tools", zap.Int("iterations", o.opts.MaxIterations))
	return nil, ErrToolLoopExceeded
}

func (o *Orchestrator) callModel(ctx context.Context, turns []model.Turn) (*llm.MessageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.llm.CreateMessage(ctx, &llm.MessageRequest{
		Model:     o.opts.Model,
		System:    SystemPrompt,
		MaxTokens: o.opts.MaxTokens,
		Tools:     []llm.ToolDefinition{SearchTool},
		Turns:     turns,
	})

	status := "success"
	if err != nil {
		status = "error"
		metrics.RecordLLMRequest(o.llm.Name(), status, time.Since(start).Seconds(), 0, 0)
		return nil, err
	}
	metrics.RecordLLMRequest(o.llm.Name(), status, time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	return resp, nil
}
