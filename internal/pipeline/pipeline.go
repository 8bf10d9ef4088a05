package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/linkboard/internal/model"
)

// Step is one stage of a Pipeline. A step narrows, reorders or pages the
// working set of a View.
type Step interface {
	// Do applies the step to the view.
	Do(ctx context.Context, view *View) error

	// Name identifies the step in logs and traces.
	Name() string
}

// StepTrace records how many records entered and left one step.
type StepTrace struct {
	Step string
	In   int
	Out  int
}

// Pipeline runs Steps over a View in order. A failing step stops the run:
// a partially filtered table would misreport what matches.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step traces. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSteps appends steps to the pipeline.
func WithSteps(steps ...Step) Option {
	return func(p *Pipeline) {
		p.steps = append(p.steps, steps...)
	}
}

// New creates a Pipeline from options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// ForQuery returns the table pipeline for q: locale, status, error-type and
// search filters, the sort, then pagination.
func ForQuery(q Query, opts ...Option) *Pipeline {
	q = q.normalized()

	steps := WithSteps(
		NewLocaleFilter(q.Locale),
		NewStatusFilter(q.Status),
		NewErrorTypeFilter(q.ErrorType),
		NewSearchFilter(q.Search, q.Scope),
		NewSort(q.Sort, q.Direction),
		NewPaginate(q.Page, q.PageSize),
	)
	return New(append([]Option{steps}, opts...)...)
}

// Apply runs the table pipeline for q over links. links is not modified.
func Apply(ctx context.Context, links []model.BrokenLink, q Query, opts ...Option) (*View, error) {
	view := NewView(links, q)
	if err := ForQuery(view.Query, opts...).Run(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

// Run applies every step to view. Cancellation is checked before each
// step; the trace of completed steps is appended to view.Trace.
func (p *Pipeline) Run(ctx context.Context, view *View) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("table query cancelled", "step", step.Name(), "reason", err)
			return err
		}

		in := len(view.Links)
		if err := step.Do(ctx, view); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		trace := StepTrace{Step: step.Name(), In: in, Out: len(view.Links)}
		view.Trace = append(view.Trace, trace)
		p.logger.Debug("table step", "step", trace.Step, "in", trace.In, "out", trace.Out)
	}
	return nil
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
