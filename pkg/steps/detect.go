package steps

import (
	"context"
	"strings"

	"github.com/pebblepay/scrivener/pkg/flow"
)

// DetectInput decides whether the state carries chat or blocks input and
// normalizes the raw input field. A structured blocks document wins when
// both are present. With no usable input the discriminant is NONE, which
// routes straight to validation so the run ends with an empty-fields
// validation failure instead of an error.
func (l *Library) DetectInput(_ context.Context, st *flow.State) (flow.Delta, error) {
	if st.BlocksInput != nil {
		return flow.Delta{
			InputType: flow.String(flow.InputBlocks),
		}, nil
	}

	if trimmed := strings.TrimSpace(st.ChatInput); trimmed != "" {
		return flow.Delta{
			InputType: flow.String(flow.InputChat),
			RawInput:  flow.String(trimmed),
		}, nil
	}

	l.Logger.Warn("no usable input on state")

	return flow.Delta{
		InputType: flow.String(flow.InputNone),
		RawInput:  flow.String(""),
	}, nil
}
