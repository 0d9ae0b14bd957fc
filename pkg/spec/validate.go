package spec

import (
	"fmt"
	"strings"
)

// ValidationResult distinguishes blocking issues from non-blocking warnings.
// IsValid is true exactly when Issues is empty.
type ValidationResult struct {
	IsValid      bool     `json:"is_valid"`
	Issues       []string `json:"issues"`
	Warnings     []string `json:"warnings"`
	CanGenerate  bool     `json:"can_generate"`
	IssueCount   int      `json:"issue_count"`
	WarningCount int      `json:"warning_count"`
}

// Validate checks the spec and reports blocking issues (missing names,
// deliverables, payment amount, deadline) and advisory warnings. It is a
// pure function of the spec.
func Validate(s *ContractSpec) *ValidationResult {
	if s == nil {
		s = New()
	}

	issues := []string{}
	warnings := []string{}

	if s.Freelancer.Name == "" {
		issues = append(issues, "Freelancer name is required")
	} else if IsGenericName(s.Freelancer.Name) {
		warnings = append(warnings, fmt.Sprintf("Freelancer name %q seems generic", s.Freelancer.Name))
	}

	if s.Client.Name == "" {
		issues = append(issues, "Client name is required")
	} else if IsGenericName(s.Client.Name) {
		warnings = append(warnings, fmt.Sprintf("Client name %q seems generic", s.Client.Name))
	}

	if s.Freelancer.Email == "" {
		warnings = append(warnings, "Freelancer email is recommended for official correspondence")
	}

	if s.Client.Email == "" {
		warnings = append(warnings, "Client email is recommended for official correspondence")
	}

	if len(s.Deliverables) == 0 {
		issues = append(issues, "At least one deliverable must be specified")
	} else {
		for i, d := range s.Deliverables {
			if d.Item == "" {
				issues = append(issues, fmt.Sprintf("Deliverable %d is missing an item name", i+1))
			}
		}
	}

	switch {
	case s.Payment.Amount.IsZero():
		issues = append(issues, "Payment amount is required")
	case s.Payment.Amount.Raw == "" && s.Payment.Amount.Value <= 0:
		issues = append(issues, "Payment amount must be greater than 0")
	}

	if s.Payment.Currency == "" {
		warnings = append(warnings, "Currency not specified, defaulting to USD")
	}

	if s.Payment.Schedule == "" {
		warnings = append(warnings, "Payment schedule not specified")
	}

	if s.Timeline.Deadline == "" {
		issues = append(issues, "Project deadline is required")
	}

	if !s.QualityStandards.MaxRevisions.Set {
		warnings = append(warnings, "Number of revisions not specified, defaulting to 2")
	}

	if s.FailureScenarios.LateDelivery.PenaltyType == "" {
		warnings = append(warnings, "Late delivery policy not specified")
	}

	if s.FailureScenarios.NonDelivery.RefundPercentage == nil {
		warnings = append(warnings, "Non-delivery refund not specified")
	}

	if s.FailureScenarios.ClientRejection.Process == "" {
		warnings = append(warnings, "Client rejection process not specified")
	}

	if s.DisputeResolution.Method == "" {
		warnings = append(warnings, "Dispute resolution method not specified")
	}

	isValid := len(issues) == 0

	return &ValidationResult{
		IsValid:      isValid,
		Issues:       issues,
		Warnings:     warnings,
		CanGenerate:  isValid,
		IssueCount:   len(issues),
		WarningCount: len(warnings),
	}
}

// Report renders the result as a readable plain-text summary.
func (v *ValidationResult) Report() string {
	var b strings.Builder

	if v.IsValid {
		b.WriteString("Contract specification is valid.\n")
	} else {
		b.WriteString("Contract specification has issues:\n")
	}

	if len(v.Issues) > 0 {
		b.WriteString("\nBLOCKING ISSUES:\n")
		for _, issue := range v.Issues {
			b.WriteString("   - " + issue + "\n")
		}
	}

	if len(v.Warnings) > 0 {
		b.WriteString("\nWARNINGS:\n")
		for _, warning := range v.Warnings {
			b.WriteString("   - " + warning + "\n")
		}
	}

	if v.IsValid {
		b.WriteString("\nReady to generate contract.")
	} else {
		b.WriteString(fmt.Sprintf("\nFix %d issue(s) before generating.", len(v.Issues)))
	}

	return b.String()
}
