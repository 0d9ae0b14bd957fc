package spec

import "sort"

// Field identifies a spec field in the missing-fields computation and the
// question loop.
type Field string

const (
	FieldFreelancerName  Field = "freelancer_name"
	FieldClientName      Field = "client_name"
	FieldFreelancerEmail Field = "freelancer_email"
	FieldClientEmail     Field = "client_email"
	FieldTitle           Field = "title"
	FieldDeliverables    Field = "deliverables"
	FieldPaymentAmount   Field = "payment_amount"
	FieldPaymentCurrency Field = "payment_currency"
	FieldPaymentSchedule Field = "payment_schedule"
	FieldDeadline        Field = "deadline"
	FieldAcceptance      Field = "acceptance_criteria"
	FieldMaxRevisions    Field = "max_revisions"
	FieldLatePolicy      Field = "late_delivery_policy"
	FieldNonDelivery     Field = "non_delivery_refund"
	FieldRejection       Field = "rejection_process"
	FieldDisputeMethod   Field = "dispute_method"
)

// fieldPriorities orders questions: names before contact details before
// project basics, payment, timeline, quality, failure scenarios, disputes.
var fieldPriorities = map[Field]int{
	FieldFreelancerName:  1,
	FieldClientName:      1,
	FieldFreelancerEmail: 2,
	FieldClientEmail:     2,
	FieldTitle:           3,
	FieldDeliverables:    3,
	FieldPaymentAmount:   4,
	FieldPaymentCurrency: 4,
	FieldPaymentSchedule: 4,
	FieldDeadline:        5,
	FieldAcceptance:      6,
	FieldMaxRevisions:    6,
	FieldLatePolicy:      7,
	FieldNonDelivery:     7,
	FieldRejection:       7,
	FieldDisputeMethod:   8,
}

// Priority returns the question priority for a field; lower sorts first.
// Unknown fields sort last.
func Priority(f Field) int {
	if p, ok := fieldPriorities[f]; ok {
		return p
	}

	return 10
}

// SortByPriority orders fields highest-priority first, stable within a
// priority band.
func SortByPriority(fields []Field) []Field {
	out := append([]Field(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return Priority(out[i]) < Priority(out[j])
	})

	return out
}

// MissingFields walks the spec and reports every tracked field that still
// lacks a usable value, in priority order.
func MissingFields(s *ContractSpec) []Field {
	if s == nil {
		s = New()
	}

	var missing []Field

	if s.Freelancer.Name == "" {
		missing = append(missing, FieldFreelancerName)
	}

	if s.Client.Name == "" {
		missing = append(missing, FieldClientName)
	}

	if s.Freelancer.Email == "" {
		missing = append(missing, FieldFreelancerEmail)
	}

	if s.Client.Email == "" {
		missing = append(missing, FieldClientEmail)
	}

	if s.Title == "" {
		missing = append(missing, FieldTitle)
	}

	if len(s.Deliverables) == 0 {
		missing = append(missing, FieldDeliverables)
	}

	if s.Payment.Amount.IsZero() {
		missing = append(missing, FieldPaymentAmount)
	}

	if s.Payment.Currency == "" {
		missing = append(missing, FieldPaymentCurrency)
	}

	if s.Payment.Schedule == "" {
		missing = append(missing, FieldPaymentSchedule)
	}

	if s.Timeline.Deadline == "" {
		missing = append(missing, FieldDeadline)
	}

	if len(s.QualityStandards.AcceptanceCriteria) == 0 {
		missing = append(missing, FieldAcceptance)
	}

	if !s.QualityStandards.MaxRevisions.Set {
		missing = append(missing, FieldMaxRevisions)
	}

	if s.FailureScenarios.LateDelivery.PenaltyType == "" {
		missing = append(missing, FieldLatePolicy)
	}

	if s.FailureScenarios.NonDelivery.RefundPercentage == nil {
		missing = append(missing, FieldNonDelivery)
	}

	if s.FailureScenarios.ClientRejection.Process == "" {
		missing = append(missing, FieldRejection)
	}

	if s.DisputeResolution.Method == "" {
		missing = append(missing, FieldDisputeMethod)
	}

	return missing
}

// Contains reports whether f appears in fields.
func Contains(fields []Field, f Field) bool {
	for _, candidate := range fields {
		if candidate == f {
			return true
		}
	}

	return false
}

// fallbackQuestions are the deterministic per-field questions used when the
// completion service cannot phrase one.
var fallbackQuestions = map[Field]string{
	FieldFreelancerName:  "First things first - what's your name?",
	FieldClientName:      "Who's the client you'll be working with?",
	FieldFreelancerEmail: "What's your email for the contract?",
	FieldClientEmail:     "What's your client's email?",
	FieldTitle:           "What should we call this project?",
	FieldDeliverables:    "What will you be delivering? (files, formats, etc.)",
	FieldPaymentAmount:   "How much are you charging for this?",
	FieldPaymentCurrency: "What currency?",
	FieldPaymentSchedule: "How do you want to split the payment? (e.g., 50% upfront, 50% on completion)",
	FieldDeadline:        "When do you need to have this done by?",
	FieldAcceptance:      "How will the client know the work is done right?",
	FieldMaxRevisions:    "How many revision rounds are included?",
	FieldLatePolicy:      "What if you deliver late - any penalty or just communicate?",
	FieldNonDelivery:     "If you can't complete the work, what refund would you offer? (most say 100%)",
	FieldRejection:       "What if the client isn't happy after all revisions - partial refund or mediation?",
	FieldDisputeMethod:   "Last one! If there's a disagreement you can't resolve - mediation, arbitration, or court?",
}

// FallbackQuestion returns the template question for a field.
func FallbackQuestion(f Field) string {
	if q, ok := fallbackQuestions[f]; ok {
		return q
	}

	return "Could you tell me more about " + humanize(f) + "?"
}

// suggestions offers quick-answer chips for fields with a small set of
// common answers.
var suggestions = map[Field][]string{
	FieldPaymentSchedule: {
		"50% upfront, 50% on completion",
		"100% upfront",
		"100% on completion",
		"Milestone-based payments",
	},
	FieldMaxRevisions: {
		"Unlimited revisions",
		"2 rounds of revisions",
		"3 rounds of revisions",
		"1 round of revisions",
	},
	FieldDisputeMethod: {
		"Mediation first, then court",
		"Direct negotiation",
		"Small claims court",
		"Arbitration",
	},
	FieldLatePolicy: {
		"No penalty",
		"5% per day late",
		"Grace period of 3 days",
	},
}

// Suggestions returns quick-answer suggestions for a field, or nil.
func Suggestions(f Field) []string {
	return suggestions[f]
}

func humanize(f Field) string {
	out := make([]byte, len(f))
	for i := 0; i < len(f); i++ {
		if f[i] == '_' {
			out[i] = ' '
		} else {
			out[i] = f[i]
		}
	}

	return string(out)
}
