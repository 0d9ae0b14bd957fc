package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebblepay/scrivener/pkg/blocks"
	"github.com/pebblepay/scrivener/pkg/completion"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

func TestDetectInput(t *testing.T) {
	lib := testLibrary()

	t.Run("blocks win over chat", func(t *testing.T) {
		st := flow.NewState()
		st.BlocksInput = &blocks.Document{}
		st.ChatInput = "also some text"

		delta, err := lib.DetectInput(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.InputBlocks, *delta.InputType)
	})

	t.Run("chat input trimmed", func(t *testing.T) {
		st := flow.NewState()
		st.ChatInput = "  I need a contract  "

		delta, err := lib.DetectInput(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.InputChat, *delta.InputType)
		assert.Equal(t, "I need a contract", *delta.RawInput)
	})

	t.Run("nothing usable", func(t *testing.T) {
		st := flow.NewState()
		st.ChatInput = "   "

		delta, err := lib.DetectInput(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.InputNone, *delta.InputType)
	})
}

func TestRouteSelectors(t *testing.T) {
	st := flow.NewState()
	assert.Equal(t, flow.InputNone, RouteByInputType(st))
	assert.Equal(t, flow.ActionAskMore, RouteByNextAction(st))

	st.InputType = flow.InputChat
	st.NextAction = flow.ActionGenerate
	assert.Equal(t, flow.InputChat, RouteByInputType(st))
	assert.Equal(t, flow.ActionGenerate, RouteByNextAction(st))
}

func TestDecideNextStep(t *testing.T) {
	lib := testLibrary()

	filled := func() *spec.ContractSpec {
		s := spec.New()
		s.Freelancer.Name = "Sarah Chen"
		s.Freelancer.Email = "sarah@example.com"
		s.Client.Name = "Bean & Brew"
		s.Client.Email = "owner@example.com"
		s.Deliverables = []spec.Deliverable{{Item: "Logo design"}}
		s.Payment.Amount = spec.Amount{Value: 800}
		s.Timeline.Deadline = "September 20, 2026"
		s.QualityStandards.AcceptanceCriteria = []string{"matches brief"}
		s.QualityStandards.MaxRevisions = spec.Revisions{Set: true, Count: 2}
		s.FailureScenarios.LateDelivery.PenaltyType = "none"
		s.FailureScenarios.NonDelivery.RefundPercentage = spec.IntPtr(100)
		s.DisputeResolution.Method = "mediation"

		return s
	}

	t.Run("missing required field asks more", func(t *testing.T) {
		st := flow.NewState()

		delta, err := lib.DecideNextStep(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.ActionAskMore, *delta.NextAction)
		assert.Contains(t, *delta.DecisionReason, "required")
	})

	t.Run("missing recommended field asks more", func(t *testing.T) {
		st := flow.NewState()
		st.Spec = filled()
		st.Spec.DisputeResolution.Method = ""

		delta, err := lib.DecideNextStep(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.ActionAskMore, *delta.NextAction)
		assert.Contains(t, *delta.DecisionReason, "recommended")
	})

	t.Run("complete spec generates", func(t *testing.T) {
		st := flow.NewState()
		st.Spec = filled()

		delta, err := lib.DecideNextStep(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.ActionGenerate, *delta.NextAction)
	})

	t.Run("question budget stops recommended follow-ups", func(t *testing.T) {
		st := flow.NewState()
		st.Spec = filled()
		st.Spec.DisputeResolution.Method = ""
		st.QuestionsAsked = MaxQuestions

		delta, err := lib.DecideNextStep(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.ActionGenerate, *delta.NextAction)
	})

	t.Run("missing required field asks past the budget", func(t *testing.T) {
		st := flow.NewState()
		st.QuestionsAsked = MaxQuestions

		delta, err := lib.DecideNextStep(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, flow.ActionAskMore, *delta.NextAction)
		assert.Contains(t, *delta.DecisionReason, "required")
	})
}

func TestAskQuestion_FallbackWhenCompletionFails(t *testing.T) {
	lib := NewLibrary(&completion.Fake{Err: completion.ErrEmptyCompletion}, nil)

	st := flow.NewState()
	st.MissingFields = spec.MissingFields(st.Spec)

	delta, err := lib.AskQuestion(context.Background(), st)
	require.NoError(t, err)

	// Highest priority empty-spec field is the freelancer's own name.
	assert.Equal(t, spec.FieldFreelancerName, *delta.CurrentQuestionField)
	assert.Equal(t, spec.FallbackQuestion(spec.FieldFreelancerName), *delta.AssistantMessage)
	assert.Equal(t, 1, *delta.QuestionsAsked)
}

func TestAskQuestion_UsesCompletionPhrasing(t *testing.T) {
	lib := NewLibrary(&completion.Fake{TextResponses: []string{"And who are you working with?"}}, nil)

	st := flow.NewState()
	st.Spec.Freelancer.Name = "Sarah Chen"
	st.MissingFields = spec.MissingFields(st.Spec)
	st.QuestionsAsked = 1

	delta, err := lib.AskQuestion(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, "And who are you working with?", *delta.AssistantMessage)
	assert.Equal(t, spec.FieldClientName, *delta.CurrentQuestionField)
	assert.Equal(t, 2, *delta.QuestionsAsked)
}

func TestAskQuestion_NothingMissing(t *testing.T) {
	lib := testLibrary()

	st := flow.NewState()
	st.MissingFields = nil

	delta, err := lib.AskQuestion(context.Background(), st)
	require.NoError(t, err)
	assert.NotEmpty(t, *delta.AssistantMessage)
	assert.Nil(t, delta.CurrentQuestionField)
}

func blocksDocument() *blocks.Document {
	return &blocks.Document{
		Nodes: []blocks.Node{
			{ID: "n1", Type: "party", Data: blocks.Data{"role": "freelancer", "name": "Sarah Chen", "email": "sarah@example.com"}},
			{ID: "n2", Type: "party", Data: blocks.Data{"role": "client", "name": "Bean & Brew"}},
			{ID: "n3", Type: "deliverable", Data: blocks.Data{"item": "Logo design", "format": "SVG"}},
			{ID: "n4", Type: "payment", Data: blocks.Data{"amount": 800.0, "currency": "GBP"}},
			{ID: "n5", Type: "timeline", Data: blocks.Data{"deadline": "September 20, 2026"}},
			{ID: "n6", Type: "mystery", Data: blocks.Data{"anything": "ignored"}},
		},
	}
}

func TestParseBlocks(t *testing.T) {
	lib := testLibrary()

	st := flow.NewState()
	st.BlocksInput = blocksDocument()

	delta, err := lib.ParseBlocks(context.Background(), st)
	require.NoError(t, err)

	s := delta.Spec
	assert.Equal(t, "Sarah Chen", s.Freelancer.Name)
	assert.Equal(t, "Bean & Brew", s.Client.Name)
	require.Len(t, s.Deliverables, 1)
	assert.Equal(t, "Logo design", s.Deliverables[0].Item)
	assert.Equal(t, 800.0, s.Payment.Amount.Value)
	assert.Equal(t, "GBP", s.Payment.Currency)
	assert.Equal(t, "September 20, 2026", s.Timeline.Deadline)
}

func TestParseBlocks_IsIdempotent(t *testing.T) {
	lib := testLibrary()

	st := flow.NewState()
	st.BlocksInput = blocksDocument()

	first, err := lib.ParseBlocks(context.Background(), st)
	require.NoError(t, err)

	second, err := lib.ParseBlocks(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, first.Spec, second.Spec)
}

func TestUpdateSpecFromMessage_MergesWithoutDestroying(t *testing.T) {
	fake := &completion.Fake{
		JSONResponses: []string{`{
			"updated_spec": {"client": {"name": "Bean & Brew"}},
			"notes": "captured client name"
		}`},
	}
	lib := NewLibrary(fake, nil)

	st := flow.NewState()
	st.Spec.Freelancer.Name = "Sarah Chen"
	st.Input = "The client is Bean & Brew"

	delta, err := lib.UpdateSpecFromMessage(context.Background(), st)
	require.NoError(t, err)

	// Decoding into a clone of the current spec merges: the freelancer name
	// set earlier survives a response that only mentions the client.
	assert.Equal(t, "Sarah Chen", delta.Spec.Freelancer.Name)
	assert.Equal(t, "Bean & Brew", delta.Spec.Client.Name)
	assert.Equal(t, "captured client name", *delta.ExtractionNotes)
	assert.NotContains(t, *delta.MissingFields, spec.FieldClientName)
}

func TestUpdateSpecFromMessage_FailureKeepsPriorSpec(t *testing.T) {
	lib := NewLibrary(&completion.Fake{Err: completion.ErrMalformedOutput}, nil)

	st := flow.NewState()
	st.Spec.Freelancer.Name = "Sarah Chen"
	st.Input = "gibberish answer"

	delta, err := lib.UpdateSpecFromMessage(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, "Sarah Chen", delta.Spec.Freelancer.Name)
	assert.Contains(t, *delta.ExtractionNotes, "extraction failed")
	assert.Contains(t, *delta.MissingFields, spec.FieldClientName)
}

func TestGenerateContract_FallbackContainsPartyNamesAndSections(t *testing.T) {
	lib := NewLibrary(&completion.Fake{Err: completion.ErrEmptyCompletion}, nil)

	st := flow.NewState()
	st.Spec.Freelancer.Name = "Sarah Chen"
	st.Spec.Client.Name = "Bean & Brew"
	st.Spec.Deliverables = []spec.Deliverable{{Item: "Logo design"}}
	st.Spec.Payment.Amount = spec.Amount{Value: 800}
	st.Spec.Payment.Currency = "GBP"
	st.Spec.Timeline.Deadline = "September 20, 2026"

	delta, err := lib.GenerateContract(context.Background(), st)
	require.NoError(t, err)

	text := *delta.ContractText
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "Sarah Chen")
	assert.Contains(t, text, "Bean & Brew")
	assert.Contains(t, text, "1. PARTIES")
	assert.Contains(t, text, "SCOPE OF WORK")
	assert.Contains(t, text, "PAYMENT")
	assert.Contains(t, text, "SIGNATURES")
	assert.Contains(t, text, "September 20, 2026")
}

func TestCleanContractText(t *testing.T) {
	input := "```\n# FREELANCE CONTRACT\n\n**1. PARTIES**\n\n* First point\n* Second point\n\n\n\nSee [our site](https://example.com) for details.\n```"

	cleaned := CleanContractText(input)

	assert.NotContains(t, cleaned, "```")
	assert.NotContains(t, cleaned, "**")
	assert.NotContains(t, cleaned, "# ")
	assert.NotContains(t, cleaned, "](")
	assert.Contains(t, cleaned, "FREELANCE CONTRACT")
	assert.Contains(t, cleaned, "- First point")
	assert.Contains(t, cleaned, "our site")
	assert.NotContains(t, cleaned, "\n\n\n")
}

func TestExplainContract_FallbackSummary(t *testing.T) {
	lib := NewLibrary(&completion.Fake{Err: completion.ErrEmptyCompletion}, nil)

	st := flow.NewState()
	st.Spec.Freelancer.Name = "Sarah Chen"
	st.Spec.Deliverables = []spec.Deliverable{{Item: "Logo design"}}
	st.Spec.Payment.Amount = spec.Amount{Value: 800}
	st.Spec.Payment.Currency = "GBP"
	st.Spec.Timeline.Deadline = "September 20, 2026"
	st.ContractText = "LOGO DESIGN AGREEMENT ..."

	delta, err := lib.ExplainContract(context.Background(), st)
	require.NoError(t, err)

	assert.Contains(t, *delta.Summary, "Logo design")
	assert.Contains(t, *delta.Summary, "September 20, 2026")
	assert.Contains(t, *delta.AssistantMessage, "Sarah")
	assert.Contains(t, *delta.AssistantMessage, "PDF")
}
