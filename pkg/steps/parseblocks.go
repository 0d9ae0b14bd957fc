package steps

import (
	"context"
	"fmt"

	"github.com/pebblepay/scrivener/pkg/blocks"
	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

// ParseBlocks converts a block-graph document into a contract spec. It is a
// pure, idempotent transform: party nodes overwrite the matching party
// record, deliverable nodes append, section nodes overwrite their section,
// and unrecognized node types are ignored. Edges are informational only.
func (l *Library) ParseBlocks(_ context.Context, st *flow.State) (flow.Delta, error) {
	doc := st.BlocksInput
	if doc == nil {
		doc = &blocks.Document{}
	}

	out := spec.New()
	notes := []string{}

	for _, node := range doc.Nodes {
		switch node.Type {
		case "party":
			switch node.Data.String("role") {
			case "freelancer":
				out.Freelancer = partyFromData(node.Data)
				notes = append(notes, "Parsed freelancer: "+out.Freelancer.Name)
			case "client":
				out.Client = partyFromData(node.Data)
				notes = append(notes, "Parsed client: "+out.Client.Name)
			}

		case "deliverable":
			d := spec.Deliverable{
				Item:        node.Data.String("item", "name"),
				Description: node.Data.String("description"),
				Format:      node.Data.String("format"),
			}
			d.Quantity, _ = node.Data.Int("quantity")

			out.Deliverables = append(out.Deliverables, d)
			notes = append(notes, "Parsed deliverable: "+d.Item)

		case "payment":
			p := spec.Payment{
				Currency:   node.Data.String("currency"),
				Schedule:   node.Data.String("schedule"),
				Milestones: []spec.PaymentMilestone{},
			}

			if amount, ok := node.Data.Float("amount"); ok {
				p.Amount = spec.Amount{Value: amount}
			} else if raw := node.Data.String("amount"); raw != "" {
				p.Amount = spec.Amount{Raw: raw}
			}

			p.DepositPercentage, _ = node.Data.Int("deposit_percentage")

			out.Payment = p
			notes = append(notes, fmt.Sprintf("Parsed payment: %v %s", p.Amount.Value, p.Currency))

		case "timeline":
			out.Timeline = spec.Timeline{
				StartDate:  node.Data.String("start_date"),
				Deadline:   node.Data.String("deadline"),
				Milestones: []spec.TimelineMilestone{},
			}
			notes = append(notes, "Parsed timeline: deadline "+out.Timeline.Deadline)

		case "terms", "quality":
			q := spec.QualityStandards{
				AcceptanceCriteria: node.Data.Strings("acceptance_criteria"),
				RevisionPolicy:     node.Data.String("revision_policy"),
				ApprovalProcess:    node.Data.String("approval_process"),
			}

			if q.AcceptanceCriteria == nil {
				q.AcceptanceCriteria = []string{}
			}

			if revisions, ok := node.Data.Int("revisions", "max_revisions"); ok {
				q.MaxRevisions = spec.Revisions{Set: true, Count: revisions}
			}

			out.QualityStandards = q
			notes = append(notes, fmt.Sprintf("Parsed quality terms: %d revisions", q.MaxRevisions.Count))

		case "failure", "protection":
			out.FailureScenarios = failureFromData(node.Data)
			notes = append(notes, "Parsed failure scenarios")

		case "dispute":
			out.DisputeResolution = spec.DisputeResolution{
				Method:       node.Data.String("method"),
				Location:     node.Data.String("location", "jurisdiction"),
				Process:      node.Data.String("process"),
				GoverningLaw: node.Data.String("governing_law"),
			}
			notes = append(notes, "Parsed dispute resolution: "+out.DisputeResolution.Method)

		case "title", "project":
			out.Title = node.Data.String("title", "name")
			notes = append(notes, "Parsed title: "+out.Title)
		}
	}

	return flow.Delta{
		Spec:       out,
		ParseNotes: flow.Strings(notes),
	}, nil
}

func partyFromData(data blocks.Data) spec.Party {
	return spec.Party{
		Name:         data.String("name"),
		BusinessName: data.String("business_name"),
		Email:        data.String("email"),
		Phone:        data.String("phone"),
		Address:      data.String("address"),
	}
}

func failureFromData(data blocks.Data) spec.FailureScenarios {
	fs := spec.FailureScenarios{
		LateDelivery: spec.LateDelivery{
			PenaltyType: data.String("late_policy", "penalty_type"),
		},
		NonDelivery: spec.NonDelivery{
			Conditions: data.Strings("refund_conditions"),
		},
		ClientRejection: spec.ClientRejection{
			Process:      data.String("rejection_process"),
			RefundPolicy: data.String("rejection_refund"),
		},
		FreelancerCancellation: spec.FreelancerCancellation{
			RefundPolicy: data.String("freelancer_cancel_refund"),
		},
		ClientCancellation: spec.ClientCancellation{
			RefundPolicy: data.String("client_cancel_refund"),
		},
	}

	if fs.NonDelivery.Conditions == nil {
		fs.NonDelivery.Conditions = []string{}
	}

	fs.LateDelivery.PenaltyAmount, _ = data.Float("late_penalty")
	fs.LateDelivery.GracePeriodDays, _ = data.Int("grace_period")
	fs.FreelancerCancellation.NoticePeriodDays, _ = data.Int("notice_days")

	if refund, ok := data.Int("non_delivery_refund"); ok {
		fs.NonDelivery.RefundPercentage = spec.IntPtr(refund)
	} else {
		fs.NonDelivery.RefundPercentage = spec.IntPtr(100)
	}

	if killFee, ok := data.Int("kill_fee"); ok {
		fs.ClientCancellation.KillFeePercentage = spec.IntPtr(killFee)
	}

	return fs
}
