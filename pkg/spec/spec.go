// Package spec defines the contract specification schema shared by every
// step in the drafting workflow, plus the missing-field computation that
// drives the interactive question loop.
package spec

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Party identifies one side of the agreement. The freelancer provides the
// service; the client pays for it.
type Party struct {
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

type Deliverable struct {
	Item        string `json:"item"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Quantity    int    `json:"quantity"`
}

// Amount holds a payment amount that may arrive as a bare number or as a
// string like "£500" or "800 GBP". The raw form is kept until normalization
// splits it into a numeric value and a currency code.
type Amount struct {
	Value float64
	Raw   string
}

func (a Amount) IsZero() bool {
	return a.Value == 0 && a.Raw == ""
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Raw != "" {
		return json.Marshal(a.Raw)
	}

	if a.Value == 0 {
		return []byte("null"), nil
	}

	return json.Marshal(a.Value)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		a.Value = v
		a.Raw = ""

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Raw = strings.TrimSpace(s)
		a.Value = 0

		return nil
	}

	// null or anything unrecognized leaves the amount unset
	a.Value = 0
	a.Raw = ""

	return nil
}

type PaymentMilestone struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
}

type Payment struct {
	Amount            Amount             `json:"amount"`
	Currency          string             `json:"currency"`
	Schedule          string             `json:"schedule"`
	DepositPercentage int                `json:"deposit_percentage"`
	Milestones        []PaymentMilestone `json:"milestones"`
}

type TimelineMilestone struct {
	Description string `json:"description"`
	Date        string `json:"date"`
}

type Timeline struct {
	StartDate  string              `json:"start_date"`
	Deadline   string              `json:"deadline"`
	Milestones []TimelineMilestone `json:"milestones"`
}

// Revisions is either a bounded count or "unlimited". Unset means the user
// has not answered yet; normalization fills the default.
type Revisions struct {
	Set       bool
	Unlimited bool
	Count     int
}

func (r Revisions) MarshalJSON() ([]byte, error) {
	if !r.Set {
		return []byte("null"), nil
	}

	if r.Unlimited {
		return json.Marshal("unlimited")
	}

	return json.Marshal(r.Count)
}

func (r *Revisions) UnmarshalJSON(data []byte) error {
	*r = Revisions{}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		r.Set = true
		r.Count = n

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "unlimited") {
			r.Set = true
			r.Unlimited = true

			return nil
		}

		if n, err := strconv.Atoi(s); err == nil {
			r.Set = true
			r.Count = n
		}

		return nil
	}

	return nil
}

type QualityStandards struct {
	AcceptanceCriteria []string  `json:"acceptance_criteria"`
	RevisionPolicy     string    `json:"revision_policy"`
	MaxRevisions       Revisions `json:"max_revisions"`
	ApprovalProcess    string    `json:"approval_process"`
}

type LateDelivery struct {
	PenaltyType     string  `json:"penalty_type"`
	PenaltyAmount   float64 `json:"penalty_amount"`
	GracePeriodDays int     `json:"grace_period_days"`
}

type NonDelivery struct {
	RefundPercentage *int     `json:"refund_percentage"`
	Conditions       []string `json:"conditions"`
}

type ClientRejection struct {
	Process      string `json:"process"`
	RefundPolicy string `json:"refund_policy"`
}

type FreelancerCancellation struct {
	RefundPolicy     string `json:"refund_policy"`
	NoticePeriodDays int    `json:"notice_period_days"`
}

type ClientCancellation struct {
	RefundPolicy      string `json:"refund_policy"`
	KillFeePercentage *int   `json:"kill_fee_percentage"`
}

// FailureScenarios covers the five predefined what-happens-if-something-
// goes-wrong sub-records.
type FailureScenarios struct {
	LateDelivery           LateDelivery           `json:"late_delivery"`
	NonDelivery            NonDelivery            `json:"non_delivery"`
	ClientRejection        ClientRejection        `json:"client_rejection"`
	FreelancerCancellation FreelancerCancellation `json:"freelancer_cancellation"`
	ClientCancellation     ClientCancellation     `json:"client_cancellation"`
}

type DisputeResolution struct {
	Method       string `json:"method"`
	Location     string `json:"location"`
	Process      string `json:"process"`
	GoverningLaw string `json:"governing_law"`
}

type Liability struct {
	MaxLiability      string   `json:"max_liability"`
	Exclusions        []string `json:"exclusions"`
	InsuranceRequired bool     `json:"insurance_required"`
}

type IPOwnership struct {
	FinalWork       string `json:"final_work"`
	TransferOn      string `json:"transfer_on"`
	PortfolioRights bool   `json:"portfolio_rights"`
}

type Confidentiality struct {
	Required bool   `json:"required"`
	Duration string `json:"duration"`
	Scope    string `json:"scope"`
}

// ContractSpec is the single record the workflow fills in. Every field is
// present after normalization; a missing meaningful value is tracked through
// MissingFields, never by key absence.
type ContractSpec struct {
	Title             string            `json:"title"`
	Freelancer        Party             `json:"freelancer"`
	Client            Party             `json:"client"`
	Deliverables      []Deliverable     `json:"deliverables"`
	Payment           Payment           `json:"payment"`
	Timeline          Timeline          `json:"timeline"`
	QualityStandards  QualityStandards  `json:"quality_standards"`
	FailureScenarios  FailureScenarios  `json:"failure_scenarios"`
	DisputeResolution DisputeResolution `json:"dispute_resolution"`
	Liability         Liability         `json:"liability"`
	SpecialTerms      []string          `json:"special_terms"`
	IPOwnership       IPOwnership       `json:"ip_ownership"`
	Confidentiality   Confidentiality   `json:"confidentiality"`
}

// New returns an empty contract spec with every collection initialized and
// portfolio rights defaulted on.
func New() *ContractSpec {
	return &ContractSpec{
		Deliverables: []Deliverable{},
		Payment: Payment{
			Milestones: []PaymentMilestone{},
		},
		Timeline: Timeline{
			Milestones: []TimelineMilestone{},
		},
		QualityStandards: QualityStandards{
			AcceptanceCriteria: []string{},
		},
		FailureScenarios: FailureScenarios{
			NonDelivery: NonDelivery{Conditions: []string{}},
		},
		Liability: Liability{
			Exclusions: []string{},
		},
		SpecialTerms: []string{},
		IPOwnership: IPOwnership{
			PortfolioRights: true,
		},
	}
}

// Clone returns a deep copy so a step can work on a scratch spec without
// mutating the session record.
func (s *ContractSpec) Clone() *ContractSpec {
	if s == nil {
		return New()
	}

	out := *s

	out.Deliverables = append([]Deliverable(nil), s.Deliverables...)
	out.Payment.Milestones = append([]PaymentMilestone(nil), s.Payment.Milestones...)
	out.Timeline.Milestones = append([]TimelineMilestone(nil), s.Timeline.Milestones...)
	out.QualityStandards.AcceptanceCriteria = append([]string(nil), s.QualityStandards.AcceptanceCriteria...)
	out.FailureScenarios.NonDelivery.Conditions = append([]string(nil), s.FailureScenarios.NonDelivery.Conditions...)
	out.Liability.Exclusions = append([]string(nil), s.Liability.Exclusions...)
	out.SpecialTerms = append([]string(nil), s.SpecialTerms...)

	if s.FailureScenarios.NonDelivery.RefundPercentage != nil {
		v := *s.FailureScenarios.NonDelivery.RefundPercentage
		out.FailureScenarios.NonDelivery.RefundPercentage = &v
	}

	if s.FailureScenarios.ClientCancellation.KillFeePercentage != nil {
		v := *s.FailureScenarios.ClientCancellation.KillFeePercentage
		out.FailureScenarios.ClientCancellation.KillFeePercentage = &v
	}

	return &out
}

// EnsureStructure fills nil collections so downstream code never hits a nil
// slice where the schema promises one.
func (s *ContractSpec) EnsureStructure() {
	if s.Deliverables == nil {
		s.Deliverables = []Deliverable{}
	}

	if s.Payment.Milestones == nil {
		s.Payment.Milestones = []PaymentMilestone{}
	}

	if s.Timeline.Milestones == nil {
		s.Timeline.Milestones = []TimelineMilestone{}
	}

	if s.QualityStandards.AcceptanceCriteria == nil {
		s.QualityStandards.AcceptanceCriteria = []string{}
	}

	if s.FailureScenarios.NonDelivery.Conditions == nil {
		s.FailureScenarios.NonDelivery.Conditions = []string{}
	}

	if s.Liability.Exclusions == nil {
		s.Liability.Exclusions = []string{}
	}

	if s.SpecialTerms == nil {
		s.SpecialTerms = []string{}
	}
}

// IntPtr is a convenience for the optional percentage fields.
func IntPtr(v int) *int {
	return &v
}
