package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

const explainSystemPrompt = `You explain freelance contracts to the freelancer who is about to sign them.
Summarize the contract in plain English, second person ("you").
Cover: what you deliver, what you get paid and when, the deadline,
revisions included, and what happens if something goes wrong.
Keep it to one short paragraph plus a few bullet points. No markdown headers.`

// ExplainContract produces the plain-English summary of the generated
// contract plus the closing assistant message. The deterministic summary is
// built from the spec so a completion failure still yields a useful
// explanation.
func (l *Library) ExplainContract(ctx context.Context, st *flow.State) (flow.Delta, error) {
	s := st.Spec
	if s == nil {
		s = spec.New()
	}

	summary, err := l.Provider.CompleteText(ctx, completion.Request{
		Prompt:      "Explain this contract:\n\n" + st.ContractText,
		System:      explainSystemPrompt,
		Temperature: 0.5,
	})
	if err != nil || strings.TrimSpace(summary) == "" {
		l.Logger.Warn("contract explanation failed, using deterministic summary", "error", err)

		summary = renderSummary(s)
	} else {
		summary = CleanContractText(summary)
	}

	return flow.Delta{
		Summary:          flow.String(summary),
		AssistantMessage: flow.String(closingMessage(s)),
	}, nil
}

func renderSummary(s *spec.ContractSpec) string {
	var b strings.Builder

	b.WriteString("Here's what your contract says, in plain English:\n\n")

	if len(s.Deliverables) > 0 {
		items := make([]string, 0, len(s.Deliverables))
		for _, d := range s.Deliverables {
			items = append(items, d.Item)
		}

		fmt.Fprintf(&b, "- You deliver: %s\n", strings.Join(items, ", "))
	}

	if amount := amountLine(s.Payment); amount != "" {
		line := "- You get paid: " + amount
		if s.Payment.Schedule != "" {
			line += " (" + s.Payment.Schedule + ")"
		}

		b.WriteString(line + "\n")
	}

	if s.Timeline.Deadline != "" {
		fmt.Fprintf(&b, "- Deadline: %s\n", s.Timeline.Deadline)
	}

	if line := revisionsLine(s.QualityStandards.MaxRevisions); line != "" {
		fmt.Fprintf(&b, "- Revisions included: %s\n", line)
	}

	if s.FailureScenarios.NonDelivery.RefundPercentage != nil {
		fmt.Fprintf(&b, "- If you can't deliver, the client gets a %d%% refund\n",
			*s.FailureScenarios.NonDelivery.RefundPercentage)
	}

	if s.DisputeResolution.Method != "" {
		fmt.Fprintf(&b, "- Disagreements are handled by %s\n", s.DisputeResolution.Method)
	}

	return b.String()
}

func closingMessage(s *spec.ContractSpec) string {
	name := firstName(s.Freelancer.Name)
	greeting := "Your contract is ready!"

	if name != "" {
		greeting = fmt.Sprintf("All done, %s - your contract is ready!", name)
	}

	return greeting + " You can download it as a PDF or ask me to explain any section in plain English."
}
