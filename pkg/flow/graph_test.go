package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingStep(note string) StepFunc {
	return func(_ context.Context, st *State) (Delta, error) {
		return Delta{ExtractionNotes: String(st.ExtractionNotes + note)}, nil
	}
}

func TestGraph_RunFollowsDirectEdges(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("first", recordingStep("a")))
	require.NoError(t, b.AddStep("second", recordingStep("b")))
	require.NoError(t, b.AddStep("third", recordingStep("c")))

	b.SetEntry("first")
	b.AddEdge("first", "second")
	b.AddEdge("second", "third")

	g, err := b.Compile()
	require.NoError(t, err)

	st := NewState()
	require.NoError(t, g.Run(context.Background(), st))

	assert.Equal(t, "abc", st.ExtractionNotes)
	assert.Equal(t, []string{"first", "second", "third"}, st.Visited)
}

func TestGraph_ConditionalEdgeRoutesByDiscriminant(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("route", func(_ context.Context, _ *State) (Delta, error) {
		return Delta{NextAction: String(ActionGenerate)}, nil
	}))
	require.NoError(t, b.AddStep("ask", recordingStep("ask")))
	require.NoError(t, b.AddStep("generate", recordingStep("gen")))

	b.SetEntry("route")
	b.AddConditionalEdge("route", func(st *State) string { return st.NextAction }, map[string]string{
		ActionAskMore:  "ask",
		ActionGenerate: "generate",
	})

	g, err := b.Compile()
	require.NoError(t, err)

	st := NewState()
	require.NoError(t, g.Run(context.Background(), st))

	assert.Equal(t, "gen", st.ExtractionNotes)
	assert.Equal(t, []string{"route", "generate"}, st.Visited)
}

func TestGraph_UnmappedDiscriminantHaltsRun(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("route", func(_ context.Context, _ *State) (Delta, error) {
		return Delta{NextAction: String("SURPRISE")}, nil
	}))
	require.NoError(t, b.AddStep("never", recordingStep("x")))

	b.SetEntry("route")
	b.AddConditionalEdge("route", func(st *State) string { return st.NextAction }, map[string]string{
		ActionAskMore: "never",
	})

	g, err := b.Compile()
	require.NoError(t, err)

	st := NewState()
	require.NoError(t, g.Run(context.Background(), st))

	assert.Empty(t, st.ExtractionNotes)
	assert.Equal(t, []string{"route"}, st.Visited)
}

func TestGraph_CycleStopsAtIterationCap(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("loop", recordingStep(".")))
	b.SetEntry("loop")
	b.AddEdge("loop", "loop")
	b.SetIterationCap(5)

	g, err := b.Compile()
	require.NoError(t, err)

	st := NewState()
	require.NoError(t, g.Run(context.Background(), st))

	assert.Len(t, st.Visited, 5)
}

func TestGraph_StepErrorIsCapturedAndRunContinues(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("boom", func(_ context.Context, _ *State) (Delta, error) {
		return Delta{}, errors.New("step exploded")
	}))
	require.NoError(t, b.AddStep("after", recordingStep("after")))

	b.SetEntry("boom")
	b.AddEdge("boom", "after")

	g, err := b.Compile()
	require.NoError(t, err)

	st := NewState()
	require.NoError(t, g.Run(context.Background(), st))

	assert.Equal(t, "step exploded", st.LastError)
	assert.Equal(t, "after", st.ExtractionNotes)
}

func TestBuilder_DuplicateStepRejected(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("step", recordingStep("a")))

	err := b.AddStep("step", recordingStep("b"))
	assert.ErrorIs(t, err, ErrDuplicateStep)
}

func TestBuilder_CompileRequiresEntry(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("step", recordingStep("a")))

	_, err := b.Compile()
	assert.ErrorIs(t, err, ErrNoEntry)

	b.SetEntry("missing")
	_, err = b.Compile()
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestBuilder_CompiledGraphIsSnapshot(t *testing.T) {
	b := NewBuilder(nil)
	require.NoError(t, b.AddStep("first", recordingStep("a")))
	require.NoError(t, b.AddStep("second", recordingStep("b")))
	b.SetEntry("first")

	g, err := b.Compile()
	require.NoError(t, err)

	// Mutating the builder after compilation must not affect the graph.
	b.AddEdge("first", "second")

	st := NewState()
	require.NoError(t, g.Run(context.Background(), st))

	assert.Equal(t, []string{"first"}, st.Visited)
}
