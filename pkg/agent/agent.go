// Package agent assembles the step library into the two runnable workflows:
// the one-shot pipeline that takes a full description or blocks document to a
// finished contract, and the interactive loop that fills the spec one
// question at a time.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/steps"
)

// OpeningMessage greets a fresh session before any graph has run.
const OpeningMessage = "Hi! I'm here to help you put together a solid freelance contract. " +
	"Tell me about your project - who you're working with, what you're delivering, " +
	"and what you're charging - or just say hi and I'll walk you through it step by step."

// Agent owns the compiled graphs. Both graphs share one step library, so the
// completion provider and clock are injected once.
type Agent struct {
	lib         *steps.Library
	pipeline    *flow.Graph
	interactive *flow.Graph
	logger      *slog.Logger
}

func New(provider completion.Provider, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	lib := steps.NewLibrary(provider, logger)

	pipeline, err := buildPipelineGraph(lib, logger)
	if err != nil {
		return nil, fmt.Errorf("building pipeline graph: %w", err)
	}

	interactive, err := buildInteractiveGraph(lib, logger)
	if err != nil {
		return nil, fmt.Errorf("building interactive graph: %w", err)
	}

	return &Agent{
		lib:         lib,
		pipeline:    pipeline,
		interactive: interactive,
		logger:      logger,
	}, nil
}

// Library exposes the step library, mainly so callers can override the clock
// in tests.
func (a *Agent) Library() *steps.Library {
	return a.lib
}

// RunPipeline executes the one-shot workflow: detect input, extract the
// spec, normalize, validate, generate, explain. The state's ChatInput or
// BlocksInput must be set before the call.
func (a *Agent) RunPipeline(ctx context.Context, st *flow.State) error {
	return a.pipeline.Run(ctx, st)
}

// RunTurn executes one interactive turn against the session state: merge the
// message into the spec, then either ask the next question or generate the
// contract.
func (a *Agent) RunTurn(ctx context.Context, st *flow.State, message string) error {
	st.Input = message
	st.Turn++

	return a.interactive.Run(ctx, st)
}

func buildPipelineGraph(lib *steps.Library, logger *slog.Logger) (*flow.Graph, error) {
	b := flow.NewBuilder(logger)

	for name, fn := range map[string]flow.StepFunc{
		steps.StepDetectInput: lib.DetectInput,
		steps.StepParseChat:   lib.UpdateSpecFromMessage,
		steps.StepParseBlocks: lib.ParseBlocks,
		steps.StepNormalize:   lib.NormalizeSpec,
		steps.StepValidate:    lib.ValidateSpec,
		steps.StepGenerate:    lib.GenerateContract,
		steps.StepExplain:     lib.ExplainContract,
	} {
		if err := b.AddStep(name, fn); err != nil {
			return nil, err
		}
	}

	b.SetEntry(steps.StepDetectInput)
	b.AddConditionalEdge(steps.StepDetectInput, steps.RouteByInputType, map[string]string{
		flow.InputChat:   steps.StepParseChat,
		flow.InputBlocks: steps.StepParseBlocks,
		flow.InputNone:   steps.StepValidate,
	})
	b.AddEdge(steps.StepParseChat, steps.StepNormalize)
	b.AddEdge(steps.StepParseBlocks, steps.StepNormalize)
	b.AddEdge(steps.StepNormalize, steps.StepValidate)
	b.AddEdge(steps.StepValidate, steps.StepGenerate)
	b.AddEdge(steps.StepGenerate, steps.StepExplain)

	return b.Compile()
}

func buildInteractiveGraph(lib *steps.Library, logger *slog.Logger) (*flow.Graph, error) {
	b := flow.NewBuilder(logger)

	for name, fn := range map[string]flow.StepFunc{
		steps.StepUpdateSpec:  lib.UpdateSpecFromMessage,
		steps.StepDecide:      lib.DecideNextStep,
		steps.StepAskQuestion: lib.AskQuestion,
		steps.StepNormalize:   lib.NormalizeSpec,
		steps.StepValidate:    lib.ValidateSpec,
		steps.StepGenerate:    lib.GenerateContract,
		steps.StepExplain:     lib.ExplainContract,
	} {
		if err := b.AddStep(name, fn); err != nil {
			return nil, err
		}
	}

	b.SetEntry(steps.StepUpdateSpec)
	b.AddEdge(steps.StepUpdateSpec, steps.StepDecide)
	b.AddConditionalEdge(steps.StepDecide, steps.RouteByNextAction, map[string]string{
		flow.ActionAskMore:  steps.StepAskQuestion,
		flow.ActionGenerate: steps.StepNormalize,
	})
	b.AddEdge(steps.StepNormalize, steps.StepValidate)
	b.AddEdge(steps.StepValidate, steps.StepGenerate)
	b.AddEdge(steps.StepGenerate, steps.StepExplain)

	return b.Compile()
}
