// Package flow implements the step graph engine that sequences the contract
// drafting workflow: named steps, direct and conditional edges, and a typed
// state record threaded through each step.
package flow

import (
	"github.com/pebblepay/scrivener/pkg/blocks"
	"github.com/pebblepay/scrivener/pkg/spec"
)

// Input type discriminants returned by the detect step.
const (
	InputChat   = "CHAT"
	InputBlocks = "BLOCKS"
	InputNone   = "NONE"
)

// Next-action discriminants returned by the decide step.
const (
	ActionAskMore  = "ASK_MORE"
	ActionGenerate = "GENERATE"
)

// State is the single mutable record a graph run operates on. It is created
// once per session and carries the contract spec plus the transient control
// fields the steps read and write. Only one run may execute against a State
// at a time; the session layer serializes access.
type State struct {
	// Inputs (one or the other).
	ChatInput   string           `json:"chat_input,omitempty"`
	BlocksInput *blocks.Document `json:"blocks_input,omitempty"`

	// Latest user message in the interactive loop.
	Input string `json:"input,omitempty"`

	InputType string `json:"input_type,omitempty"`
	RawInput  string `json:"raw_input,omitempty"`

	Spec *spec.ContractSpec `json:"contract_spec"`

	MissingFields        []spec.Field `json:"missing_fields,omitempty"`
	NextAction           string       `json:"next_action,omitempty"`
	AssistantMessage     string       `json:"assistant_message,omitempty"`
	QuestionsAsked       int          `json:"questions_asked"`
	CurrentQuestionField spec.Field   `json:"current_question_field,omitempty"`

	ExtractionNotes    string   `json:"extraction_notes,omitempty"`
	DecisionReason     string   `json:"decision_reason,omitempty"`
	NormalizationNotes []string `json:"normalization_notes,omitempty"`
	ParseNotes         []string `json:"parse_notes,omitempty"`

	Validation *spec.ValidationResult `json:"validation_result,omitempty"`

	ContractText string `json:"contract_text,omitempty"`
	Summary      string `json:"summary,omitempty"`

	Turn int `json:"turn"`

	// LastError is the reserved diagnostic slot: a step failure is recorded
	// here and the run continues.
	LastError string `json:"last_error,omitempty"`

	// Visited traces the step names executed by the most recent run.
	Visited []string `json:"visited_steps,omitempty"`
}

// NewState returns a fresh state with an empty contract spec.
func NewState() *State {
	return &State{Spec: spec.New()}
}
