package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Strategy decides one orchestration step: given the conversation so far it
// returns the model's next message, which either answers directly or
// requests tool calls. Strategies differ only in how much of the model's
// tool plan they let through per decision; the external contract is
// identical and a session never swaps strategies mid-flight.
type Strategy interface {
	Name() string
	Decide(ctx context.Context, msgs []*schema.Message) (*schema.Message, error)
}

const (
	StrategyLinear = "linear"
	StrategyGraph  = "graph"
)

// NewStrategy builds the named strategy over a chat model.
func NewStrategy(name string, cm model.ChatModel) (Strategy, error) {
	switch name {
	case "", StrategyLinear:
		return &LinearStrategy{model: cm}, nil
	case StrategyGraph:
		return &GraphStrategy{model: cm}, nil
	}
	return nil, fmt.Errorf("unknown orchestration strategy %q", name)
}

// LinearStrategy executes at most one tool per decision. If the model plans
// several calls at once, only the first survives; the model sees its result
// and is re-prompted for the next step.
type LinearStrategy struct {
	model model.ChatModel
}

func (s *LinearStrategy) Name() string { return StrategyLinear }

func (s *LinearStrategy) Decide(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	msg, err := s.model.Generate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	if len(msg.ToolCalls) > 1 {
		trimmed := *msg
		trimmed.ToolCalls = msg.ToolCalls[:1]
		return &trimmed, nil
	}
	return msg, nil
}

// GraphStrategy lets the model express a multi-step plan: every tool call in
// the decision is executed as a directed sequence before the model is
// consulted again.
type GraphStrategy struct {
	model model.ChatModel
}

func (s *GraphStrategy) Name() string { return StrategyGraph }

func (s *GraphStrategy) Decide(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	return s.model.Generate(ctx, msgs)
}
