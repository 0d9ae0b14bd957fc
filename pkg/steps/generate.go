package steps

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

const contractSystemPrompt = `You are a contract writer producing freelance service agreements in plain English.

RULES:
- Write in clear, plain English a non-lawyer can read
- Short sentences. No legalese, no "hereinafter", no "whereas"
- Numbered sections with UPPERCASE titles (1. PARTIES, 2. SCOPE OF WORK, ...)
- Cover: parties, scope of work, payment, timeline, revisions and approval,
  what happens if things go wrong, cancellation, dispute resolution,
  intellectual property, signatures
- Use ONLY the details provided. Do not invent names, amounts, or dates
- Plain text only. No markdown formatting of any kind`

// GenerateContract renders the full contract text from the normalized spec.
// The completion service writes the prose; if it fails the deterministic
// renderer produces a complete, usable contract from the same spec.
func (l *Library) GenerateContract(ctx context.Context, st *flow.State) (flow.Delta, error) {
	s := st.Spec
	if s == nil {
		s = spec.New()
	}

	prompt := "Write the complete freelance contract for this specification:\n\n" + formatSpecForGeneration(s)

	text, err := l.Provider.CompleteText(ctx, completion.Request{
		Prompt:      prompt,
		System:      contractSystemPrompt,
		Temperature: 0.3,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		l.Logger.Warn("contract generation failed, using deterministic renderer", "error", err)

		return flow.Delta{
			ContractText: flow.String(renderContract(s)),
		}, nil
	}

	return flow.Delta{
		ContractText: flow.String(CleanContractText(text)),
	}, nil
}

// formatSpecForGeneration flattens the spec into labeled lines the model can
// follow without having to parse JSON.
func formatSpecForGeneration(s *spec.ContractSpec) string {
	var b strings.Builder

	write := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	write("Project title", s.Title)
	write("Freelancer", partyLine(s.Freelancer))
	write("Client", partyLine(s.Client))

	for i, d := range s.Deliverables {
		line := d.Item
		if d.Description != "" {
			line += " - " + d.Description
		}

		if d.Format != "" {
			line += " (format: " + d.Format + ")"
		}

		write(fmt.Sprintf("Deliverable %d", i+1), line)
	}

	write("Payment amount", amountLine(s.Payment))
	write("Payment schedule", s.Payment.Schedule)
	write("Start date", s.Timeline.StartDate)
	write("Deadline", s.Timeline.Deadline)

	if len(s.QualityStandards.AcceptanceCriteria) > 0 {
		write("Acceptance criteria", strings.Join(s.QualityStandards.AcceptanceCriteria, "; "))
	}

	write("Included revisions", revisionsLine(s.QualityStandards.MaxRevisions))
	write("Approval process", s.QualityStandards.ApprovalProcess)
	write("Late delivery", lateDeliveryLine(s.FailureScenarios.LateDelivery))

	if s.FailureScenarios.NonDelivery.RefundPercentage != nil {
		write("Non-delivery refund", fmt.Sprintf("%d%% of payments received", *s.FailureScenarios.NonDelivery.RefundPercentage))
	}

	write("If client rejects the work", s.FailureScenarios.ClientRejection.Process)
	write("If freelancer cancels", s.FailureScenarios.FreelancerCancellation.RefundPolicy)

	if s.FailureScenarios.ClientCancellation.KillFeePercentage != nil {
		write("If client cancels", fmt.Sprintf("kill fee of %d%% of remaining value", *s.FailureScenarios.ClientCancellation.KillFeePercentage))
	}

	write("Dispute resolution", s.DisputeResolution.Method)
	write("Dispute process", s.DisputeResolution.Process)
	write("IP ownership", s.IPOwnership.FinalWork)

	if s.IPOwnership.PortfolioRights {
		write("Portfolio rights", "freelancer may show the work in their portfolio")
	}

	if len(s.SpecialTerms) > 0 {
		write("Special terms", strings.Join(s.SpecialTerms, "; "))
	}

	return b.String()
}

func partyLine(p spec.Party) string {
	line := p.Name
	if p.BusinessName != "" {
		line += " (" + p.BusinessName + ")"
	}

	if p.Email != "" {
		line += ", " + p.Email
	}

	return line
}

func amountLine(p spec.Payment) string {
	switch {
	case p.Amount.Raw != "":
		return p.Amount.Raw
	case p.Amount.Value > 0:
		return fmt.Sprintf("%.2f %s", p.Amount.Value, p.Currency)
	default:
		return ""
	}
}

func revisionsLine(r spec.Revisions) string {
	switch {
	case !r.Set:
		return ""
	case r.Unlimited:
		return "unlimited"
	default:
		return fmt.Sprintf("%d rounds", r.Count)
	}
}

func lateDeliveryLine(ld spec.LateDelivery) string {
	if ld.PenaltyType == "" {
		return ""
	}

	line := "penalty: " + ld.PenaltyType
	if ld.PenaltyAmount > 0 {
		line += fmt.Sprintf(" (%.2f)", ld.PenaltyAmount)
	}

	if ld.GracePeriodDays > 0 {
		line += fmt.Sprintf(", grace period %d days", ld.GracePeriodDays)
	}

	return line
}

var (
	fenceLine      = regexp.MustCompile("(?m)^```.*$")
	boldMarks      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicMarks    = regexp.MustCompile(`\*([^*\n]+)\*`)
	headerMarks    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	bulletAsterisk = regexp.MustCompile(`(?m)^\s*\*\s+`)
	linkMarks      = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	manyBlanks     = regexp.MustCompile(`\n{3,}`)
)

// CleanContractText strips the markdown decorations models add despite
// instructions, leaving plain contract text. Bullets go before the italic
// pass so a list of asterisk bullets is not mistaken for emphasis.
func CleanContractText(text string) string {
	text = fenceLine.ReplaceAllString(text, "")
	text = bulletAsterisk.ReplaceAllString(text, "- ")
	text = boldMarks.ReplaceAllString(text, "$1")
	text = italicMarks.ReplaceAllString(text, "$1")
	text = headerMarks.ReplaceAllString(text, "")
	text = linkMarks.ReplaceAllString(text, "$1")
	text = manyBlanks.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// renderContract is the deterministic fallback: a complete plain-English
// contract assembled from the spec with no model involvement.
func renderContract(s *spec.ContractSpec) string {
	var b strings.Builder

	title := s.Title
	if title == "" {
		title = "Freelance Service Agreement"
	}

	b.WriteString(strings.ToUpper(title) + "\n\n")

	b.WriteString("1. PARTIES\n\n")
	fmt.Fprintf(&b, "This agreement is between %s (\"Freelancer\") and %s (\"Client\").\n",
		orUnknown(s.Freelancer.Name), orUnknown(s.Client.Name))

	if s.Freelancer.Email != "" {
		fmt.Fprintf(&b, "Freelancer contact: %s\n", s.Freelancer.Email)
	}

	if s.Client.Email != "" {
		fmt.Fprintf(&b, "Client contact: %s\n", s.Client.Email)
	}

	b.WriteString("\n2. SCOPE OF WORK\n\n")

	if len(s.Deliverables) == 0 {
		b.WriteString("The Freelancer will deliver the work described by the parties in writing.\n")
	} else {
		b.WriteString("The Freelancer will deliver:\n")
		for _, d := range s.Deliverables {
			line := "- " + d.Item
			if d.Description != "" {
				line += ": " + d.Description
			}

			if d.Format != "" {
				line += " (" + d.Format + ")"
			}

			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n3. PAYMENT\n\n")

	if amount := amountLine(s.Payment); amount != "" {
		fmt.Fprintf(&b, "The Client will pay the Freelancer %s for the work described above.\n", amount)
	} else {
		b.WriteString("The payment amount will be agreed in writing before work begins.\n")
	}

	if s.Payment.Schedule != "" {
		fmt.Fprintf(&b, "Payment schedule: %s.\n", s.Payment.Schedule)
	}

	b.WriteString("\n4. TIMELINE\n\n")

	if s.Timeline.StartDate != "" {
		fmt.Fprintf(&b, "Work begins on %s.\n", s.Timeline.StartDate)
	}

	if s.Timeline.Deadline != "" {
		fmt.Fprintf(&b, "All deliverables are due by %s.\n", s.Timeline.Deadline)
	}

	b.WriteString("\n5. REVISIONS AND APPROVAL\n\n")

	if line := revisionsLine(s.QualityStandards.MaxRevisions); line != "" {
		fmt.Fprintf(&b, "The price includes %s of revisions.\n", line)
	}

	if s.QualityStandards.ApprovalProcess != "" {
		fmt.Fprintf(&b, "%s.\n", strings.TrimRight(s.QualityStandards.ApprovalProcess, "."))
	}

	if len(s.QualityStandards.AcceptanceCriteria) > 0 {
		b.WriteString("The work is accepted when it meets these criteria:\n")
		for _, c := range s.QualityStandards.AcceptanceCriteria {
			b.WriteString("- " + c + "\n")
		}
	}

	b.WriteString("\n6. IF THINGS GO WRONG\n\n")

	fs := s.FailureScenarios

	if fs.LateDelivery.PenaltyType != "" {
		if fs.LateDelivery.GracePeriodDays > 0 {
			fmt.Fprintf(&b, "Late delivery: %s penalty, with a grace period of %d days.\n",
				fs.LateDelivery.PenaltyType, fs.LateDelivery.GracePeriodDays)
		} else {
			fmt.Fprintf(&b, "Late delivery: %s penalty.\n", fs.LateDelivery.PenaltyType)
		}
	}

	if fs.NonDelivery.RefundPercentage != nil {
		fmt.Fprintf(&b, "If the Freelancer cannot deliver the work, the Client receives a %d%% refund of payments made.\n",
			*fs.NonDelivery.RefundPercentage)
	}

	if fs.ClientRejection.Process != "" {
		fmt.Fprintf(&b, "If the Client rejects the work: %s.\n", strings.TrimRight(fs.ClientRejection.Process, "."))
	}

	b.WriteString("\n7. CANCELLATION\n\n")

	if fs.FreelancerCancellation.RefundPolicy != "" {
		fmt.Fprintf(&b, "If the Freelancer cancels: %s.\n", strings.TrimRight(fs.FreelancerCancellation.RefundPolicy, "."))
	}

	if fs.ClientCancellation.KillFeePercentage != nil {
		fmt.Fprintf(&b, "If the Client cancels after work has started, a kill fee of %d%% of the remaining contract value applies.\n",
			*fs.ClientCancellation.KillFeePercentage)
	}

	b.WriteString("\n8. DISPUTES\n\n")

	if s.DisputeResolution.Method != "" {
		fmt.Fprintf(&b, "Disagreements will be resolved by %s.\n", s.DisputeResolution.Method)
	}

	if s.DisputeResolution.Process != "" {
		b.WriteString(s.DisputeResolution.Process + "\n")
	}

	b.WriteString("\n9. INTELLECTUAL PROPERTY\n\n")

	final := s.IPOwnership.FinalWork
	if final == "" {
		final = "transfers to the Client on full payment"
	}

	fmt.Fprintf(&b, "Ownership of the final work %s.\n", strings.TrimRight(final, "."))

	if s.IPOwnership.PortfolioRights {
		b.WriteString("The Freelancer may display the finished work in their portfolio.\n")
	}

	b.WriteString("\n10. SIGNATURES\n\n")
	fmt.Fprintf(&b, "Freelancer: %s    Date: ____________\n\n", orUnknown(s.Freelancer.Name))
	fmt.Fprintf(&b, "Client: %s    Date: ____________\n", orUnknown(s.Client.Name))

	return b.String()
}

func orUnknown(name string) string {
	if name == "" {
		return "____________"
	}

	return name
}
