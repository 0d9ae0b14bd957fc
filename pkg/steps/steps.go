// Package steps provides the step library for the contract drafting
// workflow: input detection, spec extraction (chat and blocks paths),
// normalization, validation, the completeness decision, question selection,
// and contract/summary generation.
//
// Steps that consume the completion service degrade to deterministic
// templated output when the service fails; a run never hard-fails because
// the model was unavailable or returned garbage.
package steps

import (
	"log/slog"
	"time"

	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
)

// Step names used when wiring graphs.
const (
	StepDetectInput = "detect_input"
	StepParseChat   = "parse_chat"
	StepParseBlocks = "parse_blocks"
	StepUpdateSpec  = "update_spec"
	StepDecide      = "decide_next_step"
	StepAskQuestion = "ask_question"
	StepNormalize   = "normalize_spec"
	StepValidate    = "validate_spec"
	StepGenerate    = "generate_contract"
	StepExplain     = "explain_contract"
)

// Library holds the dependencies the step functions share. The completion
// provider is injected; Now is overridable so relative-date normalization is
// testable against a fixed reference date.
type Library struct {
	Provider completion.Provider
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewLibrary(provider completion.Provider, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}

	return &Library{
		Provider: provider,
		Logger:   logger,
		Now:      time.Now,
	}
}

// RouteByInputType routes the conditional edge out of the detect step.
func RouteByInputType(st *flow.State) string {
	if st.InputType == "" {
		return flow.InputNone
	}

	return st.InputType
}

// RouteByNextAction routes the conditional edge out of the decide step.
func RouteByNextAction(st *flow.State) string {
	if st.NextAction == "" {
		return flow.ActionAskMore
	}

	return st.NextAction
}
