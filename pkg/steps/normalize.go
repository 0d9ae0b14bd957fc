package steps

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

const dateLayout = "January 02, 2006"

// NormalizeSpec makes the spec internally consistent regardless of input
// path: parses relative dates, splits combined amount/currency strings, and
// fills conservative defaults for everything non-blocking. Every applied
// default is recorded as a note. Normalizing an already-normalized spec is a
// no-op with no notes.
func (l *Library) NormalizeSpec(_ context.Context, st *flow.State) (flow.Delta, error) {
	s := st.Spec
	if s == nil {
		s = spec.New()
	} else {
		s = s.Clone()
	}

	s.EnsureStructure()

	notes := []string{}
	now := l.Now()

	notes = append(notes, normalizeDates(s, now)...)
	notes = append(notes, normalizePayment(s)...)
	notes = append(notes, normalizeQuality(s)...)
	notes = append(notes, normalizeFailureScenarios(s)...)
	notes = append(notes, normalizeDispute(s)...)

	if s.Title == "" {
		s.Title = generateTitle(s)
		notes = append(notes, "Generated title: "+s.Title)
	}

	return flow.Delta{
		Spec:               s,
		NormalizationNotes: flow.Strings(notes),
	}, nil
}

func normalizeDates(s *spec.ContractSpec, now time.Time) []string {
	var notes []string

	if deadline := s.Timeline.Deadline; deadline != "" {
		if normalized := ParseRelativeDate(deadline, now); normalized != deadline {
			s.Timeline.Deadline = normalized
			notes = append(notes, fmt.Sprintf("Normalized deadline: %q -> %q", deadline, normalized))
		}
	}

	if start := s.Timeline.StartDate; start != "" {
		if normalized := ParseRelativeDate(start, now); normalized != start {
			s.Timeline.StartDate = normalized
			notes = append(notes, fmt.Sprintf("Normalized start date: %q -> %q", start, normalized))
		}
	}

	if s.Timeline.StartDate == "" {
		s.Timeline.StartDate = now.Format(dateLayout)
		notes = append(notes, "Set default start date: "+s.Timeline.StartDate)
	}

	return notes
}

var relativeDatePatterns = []struct {
	re   *regexp.Regexp
	calc func(match []string, now time.Time) time.Time
}{
	{
		re: regexp.MustCompile(`^(?:in\s+)?(\d+)\s*weeks?`),
		calc: func(m []string, now time.Time) time.Time {
			n, _ := strconv.Atoi(m[1])
			return now.AddDate(0, 0, n*7)
		},
	},
	{
		re: regexp.MustCompile(`^(?:in\s+)?(\d+)\s*days?`),
		calc: func(m []string, now time.Time) time.Time {
			n, _ := strconv.Atoi(m[1])
			return now.AddDate(0, 0, n)
		},
	},
	{
		// A month counts as 30 days.
		re: regexp.MustCompile(`^(?:in\s+)?(\d+)\s*months?`),
		calc: func(m []string, now time.Time) time.Time {
			n, _ := strconv.Atoi(m[1])
			return now.AddDate(0, 0, n*30)
		},
	},
	{
		re: regexp.MustCompile(`^next\s+week`),
		calc: func(_ []string, now time.Time) time.Time {
			return now.AddDate(0, 0, 7)
		},
	},
	{
		re: regexp.MustCompile(`^end\s+of\s+(?:this\s+)?month`),
		calc: func(_ []string, now time.Time) time.Time {
			firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
			return firstOfNext.AddDate(0, 0, -1)
		},
	},
}

// ParseRelativeDate resolves strings like "in 2 weeks", "3 days", "1 month",
// "next week", or "end of month" to an absolute date relative to now,
// formatted as "January 02, 2006". Unrecognized strings are returned
// unchanged.
func ParseRelativeDate(dateStr string, now time.Time) string {
	lower := strings.ToLower(strings.TrimSpace(dateStr))

	for _, pattern := range relativeDatePatterns {
		if m := pattern.re.FindStringSubmatch(lower); m != nil {
			return pattern.calc(m, now).Format(dateLayout)
		}
	}

	return dateStr
}

var amountPattern = regexp.MustCompile(`^([£$€])?\s*([\d,]+(?:\.\d{2})?)\s*([A-Z]{3})?`)

var currencyBySymbol = map[string]string{
	"$": "USD",
	"£": "GBP",
	"€": "EUR",
}

func normalizePayment(s *spec.ContractSpec) []string {
	var notes []string

	p := &s.Payment

	if p.Amount.Raw != "" {
		if m := amountPattern.FindStringSubmatch(p.Amount.Raw); m != nil && m[2] != "" {
			symbol, number, code := m[1], m[2], m[3]

			value, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
			if err == nil {
				p.Amount = spec.Amount{Value: value}

				if symbol != "" && p.Currency == "" {
					p.Currency = currencyBySymbol[symbol]
					notes = append(notes, "Extracted currency: "+p.Currency)
				} else if code != "" && p.Currency == "" {
					p.Currency = code
					notes = append(notes, "Extracted currency: "+p.Currency)
				}
			}
		}
	}

	if p.Currency == "" {
		p.Currency = "USD"
		notes = append(notes, "Set default currency: USD")
	}

	if p.Schedule == "" {
		p.Schedule = "50% upfront, 50% on completion"
		notes = append(notes, "Set default payment schedule: 50/50")
	}

	return notes
}

func normalizeQuality(s *spec.ContractSpec) []string {
	var notes []string

	q := &s.QualityStandards

	if !q.MaxRevisions.Set {
		q.MaxRevisions = spec.Revisions{Set: true, Count: 2}
		notes = append(notes, "Set default revisions: 2 rounds")
	}

	if q.ApprovalProcess == "" {
		q.ApprovalProcess = "Client has 5 business days to review and approve each deliverable"
		notes = append(notes, "Set default approval process")
	}

	return notes
}

func normalizeFailureScenarios(s *spec.ContractSpec) []string {
	var notes []string

	fs := &s.FailureScenarios

	if fs.LateDelivery.PenaltyType == "" {
		fs.LateDelivery.PenaltyType = "none"
		fs.LateDelivery.GracePeriodDays = 3
		notes = append(notes, "Set default late policy: no penalty with 3-day grace period")
	}

	if fs.NonDelivery.RefundPercentage == nil {
		fs.NonDelivery.RefundPercentage = spec.IntPtr(100)
		notes = append(notes, "Set default non-delivery refund: 100%")
	}

	if fs.ClientRejection.Process == "" {
		fs.ClientRejection.Process = "Discussion and one additional revision attempt, then mediation if unresolved"
		notes = append(notes, "Set default rejection process")
	}

	if fs.FreelancerCancellation.RefundPolicy == "" {
		fs.FreelancerCancellation.RefundPolicy = "Full refund of unused deposit"
		notes = append(notes, "Set default freelancer cancellation refund")
	}

	if fs.ClientCancellation.KillFeePercentage == nil {
		fs.ClientCancellation.KillFeePercentage = spec.IntPtr(25)
		notes = append(notes, "Set default kill fee: 25%")
	}

	return notes
}

func normalizeDispute(s *spec.ContractSpec) []string {
	var notes []string

	d := &s.DisputeResolution

	if d.Method == "" {
		d.Method = "negotiation, then mediation, then small claims court"
		notes = append(notes, "Set default dispute method: negotiation -> mediation -> court")
	}

	if d.Process == "" {
		d.Process = "1. Direct discussion between parties (7 days)\n" +
			"2. Written mediation request if unresolved\n" +
			"3. Mediation with agreed third party\n" +
			"4. Small claims court as last resort"
		notes = append(notes, "Set default dispute process")
	}

	return notes
}

func generateTitle(s *spec.ContractSpec) string {
	clientName := s.Client.Name

	if len(s.Deliverables) > 0 {
		item := s.Deliverables[0].Item

		switch {
		case item != "" && clientName != "":
			return item + " Agreement - " + clientName
		case item != "":
			return item + " Service Agreement"
		}
	}

	if clientName != "" {
		return "Service Agreement - " + clientName
	}

	return "Freelance Service Agreement"
}
