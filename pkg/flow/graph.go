package flow

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultIterationCap bounds a single run. A misconfigured cyclic graph ends
// quietly at the cap instead of spinning; this is a soft limit, not a cycle
// detector.
const DefaultIterationCap = 20

// StepFunc is one named unit of work. It reads the state and returns a
// partial update; recoverable failures are expected to be handled inside the
// step, anything returned here is recorded on the state and the run goes on.
type StepFunc func(ctx context.Context, st *State) (Delta, error)

// Selector picks the discriminant that routes a conditional edge. It must be
// a pure function of the state.
type Selector func(st *State) string

type conditionalEdge struct {
	selector Selector
	mapping  map[string]string
}

// Builder accumulates steps and edges before compilation.
type Builder struct {
	steps        map[string]StepFunc
	edges        map[string]string
	conditionals map[string]conditionalEdge
	entry        string
	iterationCap int
	logger       *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		steps:        make(map[string]StepFunc),
		edges:        make(map[string]string),
		conditionals: make(map[string]conditionalEdge),
		iterationCap: DefaultIterationCap,
		logger:       logger,
	}
}

// AddStep registers a step function under a unique name.
func (b *Builder) AddStep(name string, fn StepFunc) error {
	if _, exists := b.steps[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStep, name)
	}

	b.steps[name] = fn

	return nil
}

// AddEdge registers an unconditional transition.
func (b *Builder) AddEdge(from, to string) {
	b.edges[from] = to
}

// AddConditionalEdge routes from a step through a selector: after the step
// runs, the selector's discriminant is looked up in mapping to find the next
// step. A discriminant absent from the mapping ends the run.
func (b *Builder) AddConditionalEdge(from string, selector Selector, mapping map[string]string) {
	b.conditionals[from] = conditionalEdge{selector: selector, mapping: mapping}
}

// SetEntry names the step a run starts at. Required before Compile.
func (b *Builder) SetEntry(name string) {
	b.entry = name
}

// SetIterationCap overrides the default per-run iteration bound.
func (b *Builder) SetIterationCap(n int) {
	if n > 0 {
		b.iterationCap = n
	}
}

// Compile snapshots the builder into an immutable runnable graph. Later
// builder mutations do not affect the compiled graph.
func (b *Builder) Compile() (*Graph, error) {
	if b.entry == "" {
		return nil, ErrNoEntry
	}

	if _, ok := b.steps[b.entry]; !ok {
		return nil, fmt.Errorf("%w: entry %q", ErrUnknownStep, b.entry)
	}

	g := &Graph{
		steps:        make(map[string]StepFunc, len(b.steps)),
		edges:        make(map[string]string, len(b.edges)),
		conditionals: make(map[string]conditionalEdge, len(b.conditionals)),
		entry:        b.entry,
		iterationCap: b.iterationCap,
		logger:       b.logger,
	}

	for name, fn := range b.steps {
		g.steps[name] = fn
	}

	for from, to := range b.edges {
		g.edges[from] = to
	}

	for from, edge := range b.conditionals {
		mapping := make(map[string]string, len(edge.mapping))
		for k, v := range edge.mapping {
			mapping[k] = v
		}

		g.conditionals[from] = conditionalEdge{selector: edge.selector, mapping: mapping}
	}

	return g, nil
}

// Graph is a compiled, immutable step graph.
type Graph struct {
	steps        map[string]StepFunc
	edges        map[string]string
	conditionals map[string]conditionalEdge
	entry        string
	iterationCap int
	logger       *slog.Logger
}

// Run executes the graph against st starting at the entry step. Step errors
// are captured on the state and do not abort the run; an unknown step name
// is a configuration error and does. The visited trace on the state is
// replaced by this run's trace.
func (g *Graph) Run(ctx context.Context, st *State) error {
	current := g.entry
	visited := make([]string, 0, g.iterationCap)

	for i := 0; i < g.iterationCap; i++ {
		fn, ok := g.steps[current]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownStep, current)
		}

		visited = append(visited, current)

		delta, err := fn(ctx, st)
		if err != nil {
			g.logger.Error("step failed", "step", current, "error", err)
			st.LastError = err.Error()
		} else {
			delta.apply(st)
		}

		next, done := g.next(current, st)
		if done {
			break
		}

		current = next
	}

	st.Visited = visited

	return nil
}

// next resolves the outgoing edge for a step: direct edge first, then
// conditional, otherwise the step is terminal.
func (g *Graph) next(current string, st *State) (string, bool) {
	if to, ok := g.edges[current]; ok {
		return to, false
	}

	if edge, ok := g.conditionals[current]; ok {
		discriminant := edge.selector(st)
		if to, ok := edge.mapping[discriminant]; ok {
			return to, false
		}

		g.logger.Warn("no edge mapped for discriminant, halting",
			"step", current, "discriminant", discriminant)

		return "", true
	}

	return "", true
}
