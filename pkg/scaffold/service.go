package scaffold

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agenticgokit/fsk/pkg/scaffold"

// Invocation is one command run: the command name and its raw tokens.
type Invocation struct {
	Command string
	Args    []string
	DryRun  bool
}

// Service runs the scaffolding pipeline
type Service struct {
	registry *Registry
	fs       afero.Fs
	project  Project
	renderer *Renderer
	logger   *zerolog.Logger
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithProject sets the project context used for bindings and dependency checks
func WithProject(project Project) Option {
	return func(s *Service) { s.project = project }
}

// WithTracerProvider sets the provider spans are created from
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// NewService creates a new scaffold service writing into fsys, which must be rooted
// at the project directory.
func NewService(registry *Registry, fsys afero.Fs, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		fs:       fsys,
		renderer: NewRenderer(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		nop := zerolog.Nop()
		s.logger = &nop
	}
	return s
}

// Registry returns the registry the service runs commands from
func (s *Service) Registry() *Registry { return s.registry }

// Run executes the pipeline: resolve, bind, look up, render, check and write.
//
// The report is returned even when err is non-nil; it lists the planned files with
// Written=false. err is the report's Errors list.
func (s *Service) Run(ctx context.Context, inv Invocation) (*ExecutionReport, error) {
	ctx, span := s.tracer.Start(ctx, "scaffold.Run", trace.WithAttributes(
		attribute.String("fsk.command", inv.Command),
		attribute.Bool("fsk.dry_run", inv.DryRun),
	))
	defer span.End()

	report := &ExecutionReport{Command: inv.Command, DryRun: inv.DryRun}
	fail := func(err error) (*ExecutionReport, error) {
		report.addError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CategoryOf(err)))
		s.logger.Debug().Err(err).Str("command", inv.Command).Msg("scaffold run failed")
		return report, report.Err()
	}

	cmd, err := s.registry.Command(inv.Command)
	if err != nil {
		return fail(err)
	}
	report.Agents = slices.Clone(cmd.Spec.Agents)

	opts, err := s.resolve(ctx, cmd, inv.Args)
	if err != nil {
		return fail(err)
	}
	report.Primary = opts.Primary()

	var project map[string]string
	if s.project != nil {
		project = s.project.Bindings()
	}
	bindings, err := Bind(cmd.Spec, opts, project)
	if err != nil {
		return fail(err)
	}

	key := s.registry.Variant(cmd, opts)
	report.Variant = key
	span.SetAttributes(attribute.String("fsk.variant", key))

	set, err := s.registry.Set(cmd.Spec.Name, key)
	if err != nil {
		return fail(err)
	}
	files, err := s.registry.Lookup(cmd.Spec.Name, key, opts)
	if err != nil {
		return fail(err)
	}

	checker := NewChecker(s.fs, s.project)
	rendered, err := s.render(ctx, files, bindings)
	if err != nil {
		// Files that rendered cleanly are still listed so the report shows what
		// would have been written.
		if partial, perr := s.check(ctx, checker, cmd, set, rendered, opts, bindings); perr == nil {
			report.addPlan(partial)
		}
		return fail(err)
	}

	plan, err := s.check(ctx, checker, cmd, set, rendered, opts, bindings)
	if err != nil {
		return fail(err)
	}
	report.addPlan(plan)

	if flagged, err := s.flagMigration(ctx, checker, cmd, opts, bindings, rendered); err != nil {
		report.addError(err)
	} else {
		report.FlaggedForRemoval = flagged
	}

	steps, err := s.renderer.RenderLines("next steps", concat(cmd.NextSteps, set.NextSteps), bindings)
	if err != nil {
		report.addError(err)
	}
	report.NextSteps = steps
	hooks, err := s.renderer.RenderLines("hooks", concat(cmd.Hooks, set.Hooks), bindings)
	if err != nil {
		report.addError(err)
	}
	report.Hooks = hooks

	if len(plan.Errors) > 0 {
		return fail(plan.Errors)
	}
	if report.Failed() {
		return report, report.Err()
	}

	s.logger.Debug().
		Str("command", cmd.Spec.Name).
		Str("variant", key).
		Int("files", len(plan.Files)).
		Msg("plan ready")

	if inv.DryRun {
		return report, nil
	}

	_, writeSpan := s.tracer.Start(ctx, "scaffold.Write")
	result, err := NewWriter(s.fs, s.logger).Apply(plan)
	writeSpan.End()
	if err != nil {
		return fail(err)
	}
	report.Created = result.Created
	report.Modified = result.Modified
	report.Written = true

	s.logger.Info().
		Str("command", cmd.Spec.Name).
		Int("created", len(result.Created)).
		Int("modified", len(result.Modified)).
		Msg("scaffold complete")

	return report, nil
}

func (s *Service) resolve(ctx context.Context, cmd *Command, args []string) (*ResolvedOptions, error) {
	_, span := s.tracer.Start(ctx, "scaffold.Resolve")
	defer span.End()
	return Resolve(cmd.Spec, args)
}

func (s *Service) render(ctx context.Context, files []TemplateFile, b Bindings) ([]RenderedFile, error) {
	_, span := s.tracer.Start(ctx, "scaffold.Render", trace.WithAttributes(attribute.Int("fsk.templates", len(files))))
	defer span.End()
	return s.renderer.RenderFiles(files, b)
}

func (s *Service) check(ctx context.Context, checker *Checker, cmd *Command, set TemplateSet, rendered []RenderedFile, opts *ResolvedOptions, b Bindings) (*Plan, error) {
	_, span := s.tracer.Start(ctx, "scaffold.Check")
	defer span.End()

	preconditions, err := s.renderer.RenderPreconditions(concat(cmd.Preconditions, set.Preconditions), opts, b)
	if err != nil {
		return nil, err
	}
	warnings, unmet, err := checker.CheckPreconditions(preconditions)
	if err != nil {
		return nil, err
	}

	policy := OverwritePolicy{Flag: cmd.Spec.Overwrite}
	if cmd.Spec.Overwrite != "" && opts.Bool(cmd.Spec.Overwrite) {
		policy.Allowed = true
	}
	if cmd.Spec.Migrate != "" && opts.Supplied(cmd.Spec.Migrate) {
		policy.Allowed = true
	}

	plan, err := checker.Plan(rendered, policy)
	if err != nil {
		return nil, err
	}
	plan.Warnings = append(warnings, plan.Warnings...)
	plan.Errors = append(unmet, plan.Errors...)
	return plan, nil
}

// flagMigration renders the variant being migrated away from and returns its
// existing files that the new variant does not produce. Nothing is removed.
func (s *Service) flagMigration(ctx context.Context, checker *Checker, cmd *Command, opts *ResolvedOptions, b Bindings, rendered []RenderedFile) ([]string, error) {
	if cmd.Spec.Migrate == "" || !opts.Supplied(cmd.Spec.Migrate) {
		return nil, nil
	}
	_, span := s.tracer.Start(ctx, "scaffold.Migrate")
	defer span.End()

	from := opts.String(cmd.Spec.Migrate)
	files, err := s.registry.Lookup(cmd.Spec.Name, from, opts)
	if err != nil {
		return nil, err
	}
	old, err := s.renderer.RenderFiles(files, b)
	if err != nil {
		return nil, err
	}

	produced := make(map[string]bool, len(rendered))
	for _, f := range rendered {
		produced[f.Path] = true
	}
	var candidates []string
	for _, f := range old {
		if !produced[f.Path] && !f.Barrel {
			candidates = append(candidates, f.Path)
		}
	}
	return checker.Existing(candidates)
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
