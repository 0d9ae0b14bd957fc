package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

const extractSystemPrompt = `You are a contract information extractor.

YOUR JOB:
1. Read what field was being asked about
2. Extract the user's answer and put it in the CORRECT field

IMPORTANT - WHO IS WHO:
- FREELANCER = the person PROVIDING the service (the user of this app)
- CLIENT = the person/business HIRING the freelancer (paying for the work)

If the field being asked was "freelancer_name" put the answer in freelancer.name.
If the field being asked was "client_name" put the answer in client.name.
DO NOT MIX THESE UP!

HANDLING RESPONSES:
- If the user says "yes", "ok", "yep" they are CONFIRMING what was asked or suggested
- If the user has typos, interpret the intended word
- Accept names exactly as given

The contract spec schema:
- freelancer: {name, business_name, email, phone, address} - THE SERVICE PROVIDER
- client: {name, business_name, email, phone, address} - THE PERSON PAYING
- title: project name
- deliverables: [{item, description, format, quantity}]
- payment: {amount, currency, schedule, deposit_percentage, milestones}
- timeline: {start_date, deadline, milestones}
- quality_standards: {acceptance_criteria, revision_policy, max_revisions, approval_process}
- failure_scenarios: {...}
- dispute_resolution: {...}

Return JSON with:
{
  "updated_spec": { ... complete updated spec ... },
  "notes": ""
}

Return ONLY valid JSON.`

type extractionResult struct {
	UpdatedSpec *spec.ContractSpec `json:"updated_spec"`
	Notes       string             `json:"notes"`
}

// UpdateSpecFromMessage extracts contract details from the user's message
// via the completion service and merges them into the spec. Extraction
// failure is non-destructive: the prior spec is preserved and the full
// missing-fields list is recomputed from it.
func (l *Library) UpdateSpecFromMessage(ctx context.Context, st *flow.State) (flow.Delta, error) {
	userInput := st.Input
	if userInput == "" {
		userInput = st.RawInput
	}

	current := st.Spec
	if current == nil {
		current = spec.New()
	}

	prompt, err := l.buildExtractionPrompt(st, current, userInput)
	if err != nil {
		return l.extractionFallback(current, err), nil
	}

	// Pre-filling the target with a clone of the current spec makes the
	// decode a merge: fields the model omits keep their prior values.
	result := extractionResult{UpdatedSpec: current.Clone()}

	err = l.Provider.CompleteJSON(ctx, completion.Request{
		Prompt: prompt,
		System: extractSystemPrompt,
	}, &result)
	if err != nil {
		l.Logger.Warn("spec extraction failed, keeping prior spec", "error", err)

		return l.extractionFallback(current, err), nil
	}

	updated := result.UpdatedSpec
	if updated == nil {
		updated = current.Clone()
	}

	updated.EnsureStructure()
	spec.TidySpec(updated)

	return flow.Delta{
		Spec:            updated,
		MissingFields:   flow.Fields(spec.MissingFields(updated)),
		ExtractionNotes: flow.String(result.Notes),
	}, nil
}

func (l *Library) buildExtractionPrompt(st *flow.State, current *spec.ContractSpec, userInput string) (string, error) {
	specJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding current spec: %w", err)
	}

	fieldHint := ""

	switch st.CurrentQuestionField {
	case "":
	case spec.FieldFreelancerName:
		fieldHint = "THE FIELD BEING ASKED: freelancer_name (the user's own name - they are the freelancer)"
	case spec.FieldClientName:
		fieldHint = "THE FIELD BEING ASKED: client_name (the name of the person/business hiring them)"
	case spec.FieldFreelancerEmail:
		fieldHint = "THE FIELD BEING ASKED: freelancer_email (the user's own email)"
	case spec.FieldClientEmail:
		fieldHint = "THE FIELD BEING ASKED: client_email (the client's email)"
	default:
		fieldHint = "THE FIELD BEING ASKED: " + string(st.CurrentQuestionField)
	}

	return fmt.Sprintf(`Current contract spec:
%s

%s

CONVERSATION:
Assistant asked: %q
User replied: %q

The user is answering the assistant's question.
Put their answer in the CORRECT field based on what was being asked.
- freelancer = the person providing the service (the app user)
- client = the person paying for the work

Return the updated spec with the new information.`,
		specJSON, fieldHint, st.AssistantMessage, userInput), nil
}

func (l *Library) extractionFallback(current *spec.ContractSpec, err error) flow.Delta {
	return flow.Delta{
		Spec:            current,
		MissingFields:   flow.Fields(spec.MissingFields(current)),
		ExtractionNotes: flow.String("extraction failed: " + err.Error()),
	}
}
