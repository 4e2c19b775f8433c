// Package docgen runs the metadata-to-view-model transformation over every
// documentation unit of a metadata document and hands the results to a Sink.
package docgen

import (
	"context"
	"encoding/json"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ruledoc/internal/config"
	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/logfields"
	"git.home.luguber.info/inful/ruledoc/internal/manifest"
	"git.home.luguber.info/inful/ruledoc/internal/markdown"
	"git.home.luguber.info/inful/ruledoc/internal/metadata"
	"git.home.luguber.info/inful/ruledoc/internal/metrics"
	"git.home.luguber.info/inful/ruledoc/internal/observability"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
	"git.home.luguber.info/inful/ruledoc/internal/version"
)

// Options control a generation run.
type Options struct {
	Format      ruledoc.Format
	StripPrefix string
	Units       config.UnitConfigs
	// FailFast aborts the run on the first failing unit instead of skipping it.
	FailFast bool
}

// OptionsFromConfig copies the generation settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Format:      cfg.Format,
		StripPrefix: cfg.StripPrefix,
		Units:       cfg.Units,
	}
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Emitted  []*ruledoc.RuleSet
	Empty    []string
	Skipped  []manifest.SkippedUnit
	Manifest *manifest.RunManifest
	// Unchanged is set when the sink's previous manifest records the same
	// inputs and outputs as this run.
	Unchanged bool
}

// Generator builds and emits documentation units.
type Generator struct {
	opts     Options
	sink     Sink
	recorder metrics.Recorder
	renderer *markdown.Renderer
	now      func() time.Time
	newID    func() string
}

// NewGenerator returns a generator writing to sink.
func NewGenerator(opts Options, sink Sink) *Generator {
	return &Generator{
		opts:     opts,
		sink:     sink,
		recorder: metrics.NoopRecorder{},
		renderer: markdown.NewRenderer(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	g.recorder = r
	return g
}

// Generate processes doc unit by unit in document order.
//
// A unit that fails to build is logged and recorded as skipped; the run
// carries on unless FailFast is set. Units with no definitions are not emitted.
func (g *Generator) Generate(ctx context.Context, doc *metadata.Document, inputs manifest.Inputs) (*Result, error) {
	start := g.now()
	runID := g.newID()
	ctx = observability.WithRunID(ctx, runID)

	inputs.Format = string(g.opts.Format)
	inputs.StripPrefix = g.opts.StripPrefix
	m := &manifest.RunManifest{
		ID:        runID,
		Timestamp: start.UTC(),
		Version:   version.Version,
		Inputs:    inputs,
		Units:     []manifest.UnitOutput{},
		Status:    manifest.StatusSuccess,
	}
	res := &Result{RunID: runID, Manifest: m}

	observability.InfoContext(ctx, "Starting generation",
		logfields.Count(len(doc.Units)),
		logfields.Format(string(g.opts.Format)))

	outputs := make(map[string]string, len(doc.Units))
	for _, unit := range doc.Units {
		if err := ctx.Err(); err != nil {
			return g.finish(ctx, res, start, manifest.StatusFailed), err
		}
		unitCtx := observability.WithUnit(ctx, unit.Source)

		rs, err := g.buildUnit(unit)
		if err == nil {
			err = checkOutput(outputs, rs)
		}
		if err != nil {
			g.recorder.IncUnitResult(metrics.UnitFailed)
			observability.ErrorContext(unitCtx, "Skipping documentation unit", logfields.Error(err))
			res.Skipped = append(res.Skipped, skipped(unit.Source, err))
			if g.opts.FailFast {
				return g.finish(ctx, res, start, manifest.StatusFailed), err
			}
			continue
		}

		if rs.Empty() {
			g.recorder.IncUnitResult(metrics.UnitEmpty)
			observability.DebugContext(unitCtx, "Nothing to document")
			res.Empty = append(res.Empty, unit.Source)
			continue
		}

		out, err := g.emit(unitCtx, rs)
		if err != nil {
			return g.finish(ctx, res, start, manifest.StatusFailed), err
		}
		outputs[path.Clean(ModelPath(rs))] = unit.Source
		m.Units = append(m.Units, out)
		res.Emitted = append(res.Emitted, rs)
	}

	status := manifest.StatusSuccess
	if len(res.Skipped) > 0 {
		status = manifest.StatusPartial
	}
	g.finish(ctx, res, start, status)
	return res, nil
}

func (g *Generator) buildUnit(unit metadata.Unit) (*ruledoc.RuleSet, error) {
	md := ruledoc.RuleSetMetadata{
		Source:      unit.Source,
		Language:    unit.Language(),
		StripPrefix: g.opts.StripPrefix,
		Format:      g.opts.Format,
	}
	if u, ok := g.opts.Units.Find(unit.Source); ok {
		md.Title = u.Title
		md.Description = u.Description
	}
	rs, err := ruledoc.NewRuleSet(md)
	if err != nil {
		return nil, err
	}
	if rs.Format == ruledoc.FormatHTML {
		if err := g.renderer.RenderRuleSet(rs); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func (g *Generator) emit(ctx context.Context, rs *ruledoc.RuleSet) (manifest.UnitOutput, error) {
	model, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return manifest.UnitOutput{}, errors.WrapError(err, errors.CategoryInternal, "encode view model").
			WithContext("source", rs.Source).
			Build()
	}
	err = g.sink.Write(ctx, rs, model)
	if err != nil && errors.IsRetryable(err) {
		observability.WarnContext(ctx, "Retrying model write", logfields.Error(err))
		err = g.sink.Write(ctx, rs, model)
	}
	if err != nil {
		g.recorder.IncUnitResult(metrics.UnitFailed)
		return manifest.UnitOutput{}, err
	}

	g.recorder.IncUnitResult(metrics.UnitEmitted)
	g.recorder.AddDefinitions(string(ruledoc.KindRule), len(rs.Rules))
	g.recorder.AddDefinitions(string(ruledoc.KindMacro), len(rs.Macros))
	g.recorder.AddDefinitions(string(ruledoc.KindRepositoryRule), len(rs.RepositoryRules))

	observability.InfoContext(ctx, "Documentation unit emitted",
		logfields.Output(rs.OutputFilename()),
		logfields.Count(len(rs.Definitions)))

	return manifest.UnitOutput{
		Source:      rs.Source,
		OutputFile:  rs.OutputFile,
		Definitions: len(rs.Definitions),
		Hash:        manifest.HashBytes(model),
	}, nil
}

func (g *Generator) finish(ctx context.Context, res *Result, start time.Time, status string) *Result {
	elapsed := g.now().Sub(start)
	res.Manifest.Status = status
	res.Manifest.Skipped = res.Skipped
	res.Manifest.Duration = elapsed.Milliseconds()
	g.recorder.ObserveRunDuration(elapsed)

	if ms, ok := g.sink.(ManifestSink); ok {
		res.Unchanged = g.unchanged(ctx, ms, res.Manifest)
		if err := ms.WriteManifest(ctx, res.Manifest); err != nil {
			observability.WarnContext(ctx, "Failed to write run manifest", logfields.Error(err))
		}
	}

	observability.InfoContext(ctx, "Generation finished",
		slog.String("status", status),
		slog.Int("emitted", len(res.Emitted)),
		slog.Int("empty", len(res.Empty)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Bool("unchanged", res.Unchanged),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return res
}

// checkOutput rejects a unit whose model path is already taken by an earlier
// unit or by the run manifest.
func checkOutput(outputs map[string]string, rs *ruledoc.RuleSet) error {
	modelPath := path.Clean(ModelPath(rs))
	if modelPath == ManifestFile {
		return errors.ConfigError("output file collides with the run manifest").
			WithContext("source", rs.Source).
			WithContext("output", rs.OutputFile).
			Build()
	}
	if prev, dup := outputs[modelPath]; dup {
		return errors.ConfigError("output file already produced by another unit").
			WithContext("source", rs.Source).
			WithContext("output", rs.OutputFile).
			WithContext("other_source", prev).
			Build()
	}
	return nil
}

// unchanged reports whether m records the same inputs and outputs as the
// manifest currently held by the sink.
func (g *Generator) unchanged(ctx context.Context, ms ManifestSink, m *manifest.RunManifest) bool {
	prev, err := ms.ReadManifest(ctx)
	if err != nil {
		observability.WarnContext(ctx, "Ignoring unreadable previous manifest", logfields.Error(err))
		return false
	}
	if prev == nil {
		return false
	}
	prevHash, err := prev.Hash()
	if err != nil {
		return false
	}
	curHash, err := m.Hash()
	if err != nil {
		return false
	}
	return prevHash == curHash
}

func skipped(source string, err error) manifest.SkippedUnit {
	s := manifest.SkippedUnit{Source: source, Reason: err.Error()}
	if classified, ok := errors.AsClassified(err); ok {
		s.Reason = classified.Message()
		s.Category = string(classified.Category())
	}
	return s
}
