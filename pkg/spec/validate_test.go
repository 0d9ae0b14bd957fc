package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSpec() *ContractSpec {
	s := New()
	s.Freelancer.Name = "Sarah Chen"
	s.Freelancer.Email = "sarah@example.com"
	s.Client.Name = "Bean & Brew"
	s.Client.Email = "owner@beanandbrew.example"
	s.Deliverables = []Deliverable{{Item: "Logo design"}}
	s.Payment.Amount = Amount{Value: 800}
	s.Payment.Currency = "GBP"
	s.Payment.Schedule = "50% upfront, 50% on completion"
	s.Timeline.Deadline = "September 20, 2026"
	s.QualityStandards.MaxRevisions = Revisions{Set: true, Count: 2}
	s.FailureScenarios.LateDelivery.PenaltyType = "none"
	s.FailureScenarios.NonDelivery.RefundPercentage = IntPtr(100)
	s.FailureScenarios.ClientRejection.Process = "Discussion then mediation"
	s.DisputeResolution.Method = "mediation"

	return s
}

func TestValidate_CompleteSpecIsValid(t *testing.T) {
	result := Validate(completeSpec())

	assert.True(t, result.IsValid)
	assert.True(t, result.CanGenerate)
	assert.Empty(t, result.Issues)
}

func TestValidate_EmptySpecHasBlockingIssues(t *testing.T) {
	result := Validate(New())

	assert.False(t, result.IsValid)
	assert.False(t, result.CanGenerate)
	assert.Contains(t, result.Issues, "Freelancer name is required")
	assert.Contains(t, result.Issues, "Client name is required")
	assert.Contains(t, result.Issues, "At least one deliverable must be specified")
	assert.Contains(t, result.Issues, "Payment amount is required")
	assert.Contains(t, result.Issues, "Project deadline is required")
}

func TestValidate_IsValidMatchesIssueCount(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContractSpec)
	}{
		{name: "complete", mutate: func(*ContractSpec) {}},
		{name: "missing deadline", mutate: func(s *ContractSpec) { s.Timeline.Deadline = "" }},
		{name: "missing deliverables", mutate: func(s *ContractSpec) { s.Deliverables = nil }},
		{name: "deliverable without item", mutate: func(s *ContractSpec) {
			s.Deliverables = []Deliverable{{Description: "something"}}
		}},
		{name: "zero amount", mutate: func(s *ContractSpec) { s.Payment.Amount = Amount{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := completeSpec()
			tt.mutate(s)

			result := Validate(s)

			assert.Equal(t, len(result.Issues) == 0, result.IsValid)
			assert.Equal(t, result.IsValid, result.CanGenerate)
			assert.Equal(t, len(result.Issues), result.IssueCount)
			assert.Equal(t, len(result.Warnings), result.WarningCount)
		})
	}
}

func TestValidate_GenericNameIsWarningNotIssue(t *testing.T) {
	s := completeSpec()
	s.Client.Name = "Client"

	result := Validate(s)

	assert.True(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "generic")
}

func TestValidationResult_Report(t *testing.T) {
	result := Validate(New())
	report := result.Report()

	assert.Contains(t, report, "BLOCKING ISSUES")
	assert.Contains(t, report, "Freelancer name is required")

	valid := Validate(completeSpec())
	assert.Contains(t, valid.Report(), "Ready to generate contract")
}

func TestIsGenericName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "empty is generic", input: "", expected: true},
		{name: "placeholder word", input: "Client", expected: true},
		{name: "placeholder lowercase", input: "freelancer", expected: true},
		{name: "real name", input: "Sarah Chen", expected: false},
		{name: "business containing keyword", input: "Designer Studio Ltd", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsGenericName(tt.input))
		})
	}
}

func TestProperName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "sarah chen", expected: "Sarah Chen"},
		{input: "o'brien", expected: "O'Brien"},
		{input: "mcdonald", expected: "McDonald"},
		{input: "Bean & Brew", expected: "Bean & Brew"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProperName(tt.input))
		})
	}
}
