package steps

import (
	"context"

	"github.com/pebblepay/scrivener/pkg/flow"
	"github.com/pebblepay/scrivener/pkg/spec"
)

// ValidateSpec records the validation verdict on the state. Warnings never
// block generation; the run continues either way and downstream steps read
// the verdict.
func (l *Library) ValidateSpec(_ context.Context, st *flow.State) (flow.Delta, error) {
	result := spec.Validate(st.Spec)

	if !result.IsValid {
		l.Logger.Warn("spec failed validation",
			"issues", result.IssueCount,
			"warnings", result.WarningCount)
	}

	return flow.Delta{Validation: result}, nil
}
