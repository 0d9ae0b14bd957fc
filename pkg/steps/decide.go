package steps

import (
	"context"
	"fmt"

	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

// MaxQuestions caps how long the loop keeps asking about recommended
// fields. Required fields are exempt from the budget and block generation
// until they are filled.
const MaxQuestions = 10

// minimumRequired must all be present before generation is considered at
// all. recommended fields are asked about while the question budget lasts.
var minimumRequired = []spec.Field{
	spec.FieldFreelancerName,
	spec.FieldClientName,
	spec.FieldDeliverables,
	spec.FieldPaymentAmount,
	spec.FieldDeadline,
}

var recommended = []spec.Field{
	spec.FieldFreelancerEmail,
	spec.FieldClientEmail,
	spec.FieldAcceptance,
	spec.FieldMaxRevisions,
	spec.FieldLatePolicy,
	spec.FieldNonDelivery,
	spec.FieldDisputeMethod,
}

// DecideNextStep picks between asking another question and generating the
// contract. The decision is deterministic: always ask while a required field
// is missing, ask about recommended fields within the question budget,
// generate otherwise.
func (l *Library) DecideNextStep(_ context.Context, st *flow.State) (flow.Delta, error) {
	missing := spec.MissingFields(st.Spec)

	for _, f := range minimumRequired {
		if spec.Contains(missing, f) {
			return flow.Delta{
				MissingFields:  flow.Fields(missing),
				NextAction:     flow.String(flow.ActionAskMore),
				DecisionReason: flow.String("Missing required field: " + string(f)),
			}, nil
		}
	}

	if st.QuestionsAsked >= MaxQuestions {
		l.Logger.Info("question budget exhausted, generating",
			"questions_asked", st.QuestionsAsked)

		return flow.Delta{
			MissingFields:  flow.Fields(missing),
			NextAction:     flow.String(flow.ActionGenerate),
			DecisionReason: flow.String(fmt.Sprintf("Asked %d questions, generating with available info", st.QuestionsAsked)),
		}, nil
	}

	for _, f := range recommended {
		if spec.Contains(missing, f) {
			return flow.Delta{
				MissingFields:  flow.Fields(missing),
				NextAction:     flow.String(flow.ActionAskMore),
				DecisionReason: flow.String("Missing recommended field: " + string(f)),
			}, nil
		}
	}

	return flow.Delta{
		MissingFields:  flow.Fields(missing),
		NextAction:     flow.String(flow.ActionGenerate),
		DecisionReason: flow.String("All required and recommended fields collected"),
	}, nil
}

// NextQuestionField returns the field the question step should ask about:
// required fields first, then recommended, all in priority order.
func NextQuestionField(missing []spec.Field) (spec.Field, bool) {
	ordered := spec.SortByPriority(missing)

	for _, f := range ordered {
		if spec.Contains(minimumRequired, f) {
			return f, true
		}
	}

	for _, f := range ordered {
		if spec.Contains(recommended, f) {
			return f, true
		}
	}

	if len(ordered) > 0 {
		return ordered[0], true
	}

	return "", false
}
