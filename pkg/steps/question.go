package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

const questionSystemPrompt = `You are a friendly contract assistant helping a freelancer set up a contract.
Ask ONE short, casual question to collect the field you are given.
Reference what you already know about the project when it helps.
Keep it under two sentences. No preamble, no markdown, just the question.`

// AskQuestion phrases the next question for the highest-priority missing
// field. The completion service gets one shot at a friendly phrasing; on any
// failure the deterministic template question is used so the loop always
// produces something to ask. Terminal step of the interactive graph.
func (l *Library) AskQuestion(ctx context.Context, st *flow.State) (flow.Delta, error) {
	field, ok := NextQuestionField(st.MissingFields)
	if !ok {
		return flow.Delta{
			AssistantMessage: flow.String("I think we have everything we need. Say \"generate\" when you're ready!"),
		}, nil
	}

	question := l.phraseQuestion(ctx, st, field)

	return flow.Delta{
		AssistantMessage:     flow.String(question),
		CurrentQuestionField: flow.FieldPtr(field),
		QuestionsAsked:       flow.Int(st.QuestionsAsked + 1),
	}, nil
}

func (l *Library) phraseQuestion(ctx context.Context, st *flow.State, field spec.Field) string {
	if field == spec.FieldTitle {
		if suggestion := titleSuggestion(st.Spec); suggestion != "" {
			return fmt.Sprintf("How about calling this project %q? Or tell me a better name.", suggestion)
		}
	}

	specJSON, err := json.Marshal(st.Spec)
	if err != nil {
		return fallbackQuestion(st, field)
	}

	prompt := fmt.Sprintf(`What we know so far:
%s

Field to collect: %s

Ask one short friendly question for this field.`, specJSON, field)

	question, err := l.Provider.CompleteText(ctx, completion.Request{
		Prompt:      prompt,
		System:      questionSystemPrompt,
		Temperature: 0.7,
	})
	if err != nil || question == "" {
		l.Logger.Warn("question phrasing failed, using template", "field", field, "error", err)

		return fallbackQuestion(st, field)
	}

	return question
}

// fallbackQuestion prefixes the template with a light acknowledgment so the
// scripted path still reads like a conversation.
func fallbackQuestion(st *flow.State, field spec.Field) string {
	prefix := "Got it! "

	if st.Spec != nil && st.Spec.Freelancer.Name != "" && field != spec.FieldFreelancerName {
		prefix = fmt.Sprintf("Great stuff, %s! ", firstName(st.Spec.Freelancer.Name))
	}

	if st.QuestionsAsked == 0 {
		prefix = ""
	}

	return prefix + spec.FallbackQuestion(field)
}

func titleSuggestion(s *spec.ContractSpec) string {
	if s == nil || len(s.Deliverables) == 0 || s.Deliverables[0].Item == "" {
		return ""
	}

	if s.Client.Name != "" {
		return s.Deliverables[0].Item + " for " + s.Client.Name
	}

	return s.Deliverables[0].Item + " Project"
}

func firstName(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			return name[:i]
		}
	}

	return name
}
