package agent

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"datapilot/analysis"
	"datapilot/datastore"
	"datapilot/viz"
)

// State is the orchestrator's position in the turn lifecycle. It is
// observable (session bookkeeping and tests read it) but only the
// orchestrator itself transitions it.
type State int32

const (
	StateIdle State = iota
	StateAwaitingModelDecision
	StateExecutingTool
	StateComposingReply
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingModelDecision:
		return "awaiting_model_decision"
	case StateExecutingTool:
		return "executing_tool"
	case StateComposingReply:
		return "composing_reply"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Options tunes the orchestration loop. Zero values fall back to safe
// defaults.
type Options struct {
	MaxToolDepth int
	ModelRetries int
	RetryBase    time.Duration
	Log          func(string)
}

// Reply is the outcome of one completed turn.
type Reply struct {
	Text        string
	Artifact    *viz.Artifact
	Invocations []Invocation
}

// Orchestrator drives one session's chat loop: it feeds the conversation to
// the strategy, executes the tool calls the model asks for, and composes the
// final reply. One turn runs at a time; the turn mutex serializes callers.
type Orchestrator struct {
	model    model.ChatModel
	strategy Strategy
	registry *Registry
	store    *datastore.DataStore
	conv     *Conversation

	maxDepth  int
	retries   int
	retryBase time.Duration
	log       func(string)

	state  atomic.Int32
	turnMu sync.Mutex

	artMu   sync.Mutex
	pending *viz.Artifact
}

// NewOrchestrator wires the fixed tool catalog over the session's store,
// binds it to the chat model, and builds the named strategy. The registry is
// sealed here; nothing can extend it later.
func NewOrchestrator(ctx context.Context, cm model.ChatModel, strategyName string, store *datastore.DataStore, opts Options) (*Orchestrator, error) {
	if opts.MaxToolDepth <= 0 {
		opts.MaxToolDepth = 6
	}
	if opts.ModelRetries <= 0 {
		opts.ModelRetries = 3
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	if opts.Log == nil {
		opts.Log = func(string) {}
	}

	o := &Orchestrator{
		model:     cm,
		store:     store,
		conv:      NewConversation(),
		maxDepth:  opts.MaxToolDepth,
		retries:   opts.ModelRetries,
		retryBase: opts.RetryBase,
		log:       opts.Log,
	}

	aEngine := analysis.NewEngine(opts.Log)
	vEngine := viz.NewEngine(opts.Log)
	o.registry = NewRegistry(
		NewQueryDataTool(store, opts.Log),
		NewAnalyzeDataTool(store, aEngine, opts.Log),
		NewVisualizeDataTool(store, vEngine, o.attachArtifact, opts.Log),
		NewInsightTool(store, aEngine, opts.Log),
	)

	if err := cm.BindTools(o.registry.ToolInfos(ctx)); err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	strategy, err := NewStrategy(strategyName, cm)
	if err != nil {
		return nil, err
	}
	o.strategy = strategy
	return o, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// StrategyName reports which strategy this orchestrator runs.
func (o *Orchestrator) StrategyName() string {
	return o.strategy.Name()
}

// Conversation exposes the session's turn log.
func (o *Orchestrator) Conversation() *Conversation {
	return o.conv
}

// Registry exposes the sealed tool catalog.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// ClearHistory drops the conversation while keeping the dataset loaded.
func (o *Orchestrator) ClearHistory() {
	o.turnMu.Lock()
	defer o.turnMu.Unlock()
	o.conv.Clear()
	o.takeArtifact()
	o.log("[ORCHESTRATOR] conversation history cleared")
}

func (o *Orchestrator) attachArtifact(a *viz.Artifact) {
	o.artMu.Lock()
	defer o.artMu.Unlock()
	// last render wins within a turn
	o.pending = a
}

func (o *Orchestrator) takeArtifact() *viz.Artifact {
	o.artMu.Lock()
	defer o.artMu.Unlock()
	a := o.pending
	o.pending = nil
	return a
}

// Chat runs one full turn: user utterance in, composed reply out. Tool
// failures stay inside the loop as error payloads the model can react to;
// only model unavailability (after retries) or context cancellation ends the
// turn with an error, and in that case the user turn remains in history while
// no assistant turn is recorded.
func (o *Orchestrator) Chat(ctx context.Context, utterance string) (*Reply, error) {
	o.turnMu.Lock()
	defer o.turnMu.Unlock()
	defer o.setState(StateIdle)

	o.conv.Append(schema.UserMessage(utterance), nil)
	o.takeArtifact()

	var invocations []Invocation
	depth := 0
	for {
		o.setState(StateAwaitingModelDecision)
		decision, err := o.decideWithRetry(ctx)
		if err != nil {
			return nil, err
		}
		if len(decision.ToolCalls) == 0 {
			return o.compose(decision.Content, invocations), nil
		}

		o.conv.Append(decision, nil)
		for _, call := range decision.ToolCalls {
			if depth >= o.maxDepth {
				// every requested call must get a tool-result turn, or the
				// transcript carries dangling tool_call ids the provider
				// will reject on the next completion
				o.conv.Append(schema.ToolMessage(skippedCallPayload, call.ID), nil)
				continue
			}
			o.setState(StateExecutingTool)
			o.log(fmt.Sprintf("[ORCHESTRATOR] executing tool %s (depth %d/%d)", call.Function.Name, depth+1, o.maxDepth))
			inv := o.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)
			if inv.Error != "" {
				o.log(fmt.Sprintf("[ORCHESTRATOR] tool %s failed: %s", inv.Tool, inv.Error))
			}
			invocations = append(invocations, inv)
			o.conv.Append(schema.ToolMessage(inv.Result, call.ID), nil)
			depth++
		}

		if depth >= o.maxDepth {
			o.log(fmt.Sprintf("[ORCHESTRATOR] tool depth limit %d reached, forcing summary", o.maxDepth))
			text, err := o.forcedSummary(ctx)
			if err != nil {
				return nil, err
			}
			return o.compose(text, invocations), nil
		}
	}
}

// compose records the assistant turn with its artifact and builds the reply.
func (o *Orchestrator) compose(text string, invocations []Invocation) *Reply {
	o.setState(StateComposingReply)
	artifact := o.takeArtifact()
	o.conv.Append(schema.AssistantMessage(text, nil), artifact)
	return &Reply{Text: text, Artifact: artifact, Invocations: invocations}
}

// decideWithRetry asks the strategy for the next step, retrying transient
// model failures with exponential backoff.
func (o *Orchestrator) decideWithRetry(ctx context.Context) (*schema.Message, error) {
	msgs := make([]*schema.Message, 0, o.conv.Len()+1)
	msgs = append(msgs, schema.SystemMessage(buildSystemPrompt(o.store)))
	msgs = append(msgs, o.conv.Messages()...)

	var lastErr error
	for attempt := 0; attempt < o.retries; attempt++ {
		if attempt > 0 {
			backoff := o.retryBase << (attempt - 1)
			o.log(fmt.Sprintf("[ORCHESTRATOR] model call failed, retrying in %v (attempt %d/%d): %v", backoff, attempt+1, o.retries, lastErr))
			select {
			case <-ctx.Done():
				return nil, &AgentUnavailableError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}
		msg, err := o.strategy.Decide(ctx, msgs)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	return nil, &AgentUnavailableError{Attempts: o.retries, Err: lastErr}
}

const depthExhaustedPrompt = `The tool budget for this turn is exhausted. Do not request any more tools. Summarize what the executed tools found so far and answer the user's question as well as the results allow.`

const skippedCallPayload = `{"error":"tool budget exhausted, call skipped"}`

// forcedSummary asks the model for a final answer through a single-node
// chain, appending an instruction that forbids further tool use. If the model
// ignores it and asks for tools anyway, its text content is used and the
// calls are dropped.
func (o *Orchestrator) forcedSummary(ctx context.Context) (string, error) {
	msgs := make([]*schema.Message, 0, o.conv.Len()+2)
	msgs = append(msgs, schema.SystemMessage(buildSystemPrompt(o.store)))
	msgs = append(msgs, o.conv.Messages()...)
	msgs = append(msgs, schema.UserMessage(depthExhaustedPrompt))

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(o.model)
	runnable, err := chain.Compile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to compile summary chain: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < o.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &AgentUnavailableError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(o.retryBase << (attempt - 1)):
			}
		}
		msg, err := runnable.Invoke(ctx, msgs)
		if err == nil {
			if msg.Content == "" {
				return "I ran out of analysis steps for this request. Please narrow the question and try again.", nil
			}
			return msg.Content, nil
		}
		lastErr = err
	}
	return "", &AgentUnavailableError{Attempts: o.retries, Err: lastErr}
}
