package flow

import "github.com/pebblepay/scrivener/pkg/spec"

// Delta is the partial update a step returns. Only non-nil fields are merged
// onto the state, by shallow overwrite; a step never mutates the state
// directly.
type Delta struct {
	InputType            *string
	RawInput             *string
	Spec                 *spec.ContractSpec
	MissingFields        *[]spec.Field
	NextAction           *string
	AssistantMessage     *string
	QuestionsAsked       *int
	CurrentQuestionField *spec.Field
	ExtractionNotes      *string
	DecisionReason       *string
	NormalizationNotes   *[]string
	ParseNotes           *[]string
	Validation           *spec.ValidationResult
	ContractText         *string
	Summary              *string
}

func (d Delta) apply(st *State) {
	if d.InputType != nil {
		st.InputType = *d.InputType
	}

	if d.RawInput != nil {
		st.RawInput = *d.RawInput
	}

	if d.Spec != nil {
		st.Spec = d.Spec
	}

	if d.MissingFields != nil {
		st.MissingFields = *d.MissingFields
	}

	if d.NextAction != nil {
		st.NextAction = *d.NextAction
	}

	if d.AssistantMessage != nil {
		st.AssistantMessage = *d.AssistantMessage
	}

	if d.QuestionsAsked != nil {
		st.QuestionsAsked = *d.QuestionsAsked
	}

	if d.CurrentQuestionField != nil {
		st.CurrentQuestionField = *d.CurrentQuestionField
	}

	if d.ExtractionNotes != nil {
		st.ExtractionNotes = *d.ExtractionNotes
	}

	if d.DecisionReason != nil {
		st.DecisionReason = *d.DecisionReason
	}

	if d.NormalizationNotes != nil {
		st.NormalizationNotes = *d.NormalizationNotes
	}

	if d.ParseNotes != nil {
		st.ParseNotes = *d.ParseNotes
	}

	if d.Validation != nil {
		st.Validation = d.Validation
	}

	if d.ContractText != nil {
		st.ContractText = *d.ContractText
	}

	if d.Summary != nil {
		st.Summary = *d.Summary
	}
}

// Pointer helpers for building deltas.

func String(v string) *string { return &v }

func Int(v int) *int { return &v }

func FieldPtr(v spec.Field) *spec.Field { return &v }

func Fields(v []spec.Field) *[]spec.Field { return &v }

func Strings(v []string) *[]string { return &v }
