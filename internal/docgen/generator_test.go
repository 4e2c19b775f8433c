package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ruledoc/internal/config"
	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/manifest"
	"git.home.luguber.info/inful/ruledoc/internal/metadata"
	"git.home.luguber.info/inful/ruledoc/internal/metrics"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

type memorySink struct {
	models   map[string][]byte
	order    []string
	manifest *manifest.RunManifest
}

func newMemorySink() *memorySink {
	return &memorySink{models: map[string][]byte{}}
}

func (s *memorySink) Write(_ context.Context, rs *ruledoc.RuleSet, model []byte) error {
	s.models[rs.Source] = model
	s.order = append(s.order, rs.Source)
	return nil
}

func (s *memorySink) ReadManifest(context.Context) (*manifest.RunManifest, error) {
	return s.manifest, nil
}

func (s *memorySink) WriteManifest(_ context.Context, m *manifest.RunManifest) error {
	s.manifest = m
	return nil
}

func testDocument(t *testing.T) *metadata.Document {
	t.Helper()
	doc, err := metadata.Read(strings.NewReader(`
units:
  - source: rules/foo.bzl
    rules:
      - name: foo_library
        kind: RULE
        attributes:
          - {name: name, mandatory: true}
          - {name: srcs, type: LABEL_LIST}
      - name: foo_macro
        kind: MACRO
  - source: rules/empty.bzl
  - source: lib/outside.bzl
    rules:
      - {name: x, kind: RULE}
  - source: rules/bar.bzl
    rules:
      - {name: bar_repo, kind: REPOSITORY_RULE}
`))
	require.NoError(t, err)
	return doc
}

func newTestGenerator(opts Options, sink Sink) *Generator {
	g := NewGenerator(opts, sink)
	g.newID = func() string { return "run-1" }
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time {
		clock = clock.Add(5 * time.Millisecond)
		return clock
	}
	return g
}

func TestGenerate_SkipsAndEmits(t *testing.T) {
	sink := newMemorySink()
	rec := newCountingRecorder()

	g := newTestGenerator(Options{
		Format:      ruledoc.FormatHTML,
		StripPrefix: "rules/",
		Units:       []config.UnitConfig{{Source: "rules/foo.bzl", Title: "Foo", Description: "Foo things."}},
	}, sink).WithRecorder(rec)

	res, err := g.Generate(context.Background(), testDocument(t), manifest.Inputs{MetadataHash: "abc"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, []string{"rules/foo.bzl", "rules/bar.bzl"}, sink.order)
	assert.Equal(t, []string{"rules/empty.bzl"}, res.Empty)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "lib/outside.bzl", res.Skipped[0].Source)
	assert.Equal(t, "config", res.Skipped[0].Category)

	foo := res.Emitted[0]
	assert.Equal(t, "Foo", foo.Title)
	assert.Equal(t, "Foo things.", foo.Description)
	assert.Equal(t, "foo", foo.OutputFile)
	assert.Equal(t, "bar Rules", res.Emitted[1].Title)
	assert.Equal(t, "<p>A unique name for this rule.</p>", foo.Rules[0].Attributes[0].DocumentationHTML)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(sink.models["rules/foo.bzl"], &decoded))
	assert.Equal(t, "foo", decoded["output_file"])
	assert.Equal(t, "html", decoded["output_extension"])

	m := sink.manifest
	require.NotNil(t, m)
	assert.Equal(t, manifest.StatusPartial, m.Status)
	assert.Equal(t, "abc", m.Inputs.MetadataHash)
	assert.Equal(t, "html", m.Inputs.Format)
	assert.Equal(t, "rules/", m.Inputs.StripPrefix)
	require.Len(t, m.Units, 2)
	assert.Equal(t, 2, m.Units[0].Definitions)
	assert.Equal(t, manifest.HashBytes(sink.models["rules/foo.bzl"]), m.Units[0].Hash)
	assert.Positive(t, m.Duration)

	assert.Equal(t, map[metrics.UnitResult]int{
		metrics.UnitEmitted: 2,
		metrics.UnitEmpty:   1,
		metrics.UnitFailed:  1,
	}, rec.units)
	assert.Equal(t, map[string]int{"RULE": 1, "MACRO": 1, "REPOSITORY_RULE": 1}, rec.definitions)
	assert.Equal(t, 1, rec.runs)
}

func TestGenerate_FailFast(t *testing.T) {
	sink := newMemorySink()
	g := newTestGenerator(Options{StripPrefix: "rules/", FailFast: true}, sink)

	res, err := g.Generate(context.Background(), testDocument(t), manifest.Inputs{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	// Units before the failure were emitted, nothing after it.
	assert.Equal(t, []string{"rules/foo.bzl"}, sink.order)
	assert.Equal(t, manifest.StatusFailed, res.Manifest.Status)
	assert.Same(t, res.Manifest, sink.manifest)
}

func TestGenerate_UnknownKindSkipped(t *testing.T) {
	doc := &metadata.Document{Units: []metadata.Unit{
		{Source: "a.bzl", Rules: []ruledoc.RuleMetadata{{Name: "asp", Kind: "ASPECT"}}},
		{Source: "b.bzl", Rules: []ruledoc.RuleMetadata{{Name: "ok", Kind: ruledoc.KindRule}}},
	}}
	sink := newMemorySink()

	res, err := newTestGenerator(Options{}, sink).Generate(context.Background(), doc, manifest.Inputs{})
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "internal", res.Skipped[0].Category)
	assert.Equal(t, "unrecognized rule kind", res.Skipped[0].Reason)
	assert.Equal(t, []string{"b.bzl"}, sink.order)
}

func TestGenerate_DuplicateOutput(t *testing.T) {
	doc := &metadata.Document{Units: []metadata.Unit{
		{Source: "a/foo.bzl", Rules: []ruledoc.RuleMetadata{{Name: "x", Kind: ruledoc.KindRule}}},
		{Source: "b/foo.bzl", Rules: []ruledoc.RuleMetadata{{Name: "y", Kind: ruledoc.KindRule}}},
	}}
	sink := newMemorySink()

	// Same basename in different directories keeps distinct outputs.
	res, err := newTestGenerator(Options{}, sink).Generate(context.Background(), doc, manifest.Inputs{})
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)

	doc.Units[1].Source = "a/foo.bzl"
	res, err = newTestGenerator(Options{}, newMemorySink()).Generate(context.Background(), doc, manifest.Inputs{})
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "output file already produced by another unit", res.Skipped[0].Reason)
}

func TestGenerate_ManifestCollision(t *testing.T) {
	doc := &metadata.Document{Units: []metadata.Unit{
		{Source: "rules/manifest.bzl", Rules: []ruledoc.RuleMetadata{{Name: "manifest_rule", Kind: ruledoc.KindRule}}},
		{Source: "rules/foo.bzl", Rules: []ruledoc.RuleMetadata{{Name: "foo_rule", Kind: ruledoc.KindRule}}},
	}}
	dir := t.TempDir()
	sink, err := NewDirSink(dir, false)
	require.NoError(t, err)

	res, err := newTestGenerator(Options{StripPrefix: "rules/"}, sink).
		Generate(context.Background(), doc, manifest.Inputs{})
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "rules/manifest.bzl", res.Skipped[0].Source)
	assert.Equal(t, "config", res.Skipped[0].Category)
	assert.Equal(t, "output file collides with the run manifest", res.Skipped[0].Reason)
	require.Len(t, res.Emitted, 1)
	assert.Equal(t, "foo", res.Emitted[0].Name)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	m, err := manifest.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.ID)
	assert.Equal(t, manifest.StatusPartial, m.Status)
	require.Len(t, m.Units, 1)
	assert.Equal(t, "rules/foo.bzl", m.Units[0].Source)

	// Fail-fast turns the collision into a run error.
	_, err = newTestGenerator(Options{StripPrefix: "rules/", FailFast: true}, newMemorySink()).
		Generate(context.Background(), doc, manifest.Inputs{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestGenerate_UnchangedSinceLastRun(t *testing.T) {
	sink, err := NewDirSink(t.TempDir(), false)
	require.NoError(t, err)
	opts := Options{StripPrefix: "rules/"}

	first, err := newTestGenerator(opts, sink).Generate(context.Background(), testDocument(t), manifest.Inputs{MetadataHash: "abc"})
	require.NoError(t, err)
	assert.False(t, first.Unchanged)

	second, err := newTestGenerator(opts, sink).Generate(context.Background(), testDocument(t), manifest.Inputs{MetadataHash: "abc"})
	require.NoError(t, err)
	assert.True(t, second.Unchanged)

	third, err := newTestGenerator(opts, sink).Generate(context.Background(), testDocument(t), manifest.Inputs{MetadataHash: "def"})
	require.NoError(t, err)
	assert.False(t, third.Unchanged)
}

type flakySink struct {
	*memorySink
	failures []error
	attempts int
}

func (s *flakySink) Write(ctx context.Context, rs *ruledoc.RuleSet, model []byte) error {
	s.attempts++
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}
	return s.memorySink.Write(ctx, rs, model)
}

func TestGenerate_RetriesFilesystemWrite(t *testing.T) {
	doc := &metadata.Document{Units: []metadata.Unit{
		{Source: "foo.bzl", Rules: []ruledoc.RuleMetadata{{Name: "x", Kind: ruledoc.KindRule}}},
	}}

	sink := &flakySink{
		memorySink: newMemorySink(),
		failures:   []error{errors.FileSystemError("write output file").Build()},
	}
	res, err := newTestGenerator(Options{}, sink).Generate(context.Background(), doc, manifest.Inputs{})
	require.NoError(t, err)
	assert.Equal(t, 2, sink.attempts)
	assert.Len(t, res.Emitted, 1)

	sink = &flakySink{
		memorySink: newMemorySink(),
		failures:   []error{errors.ValidationError("output path escapes output directory").Build()},
	}
	_, err = newTestGenerator(Options{}, sink).Generate(context.Background(), doc, manifest.Inputs{})
	require.Error(t, err)
	assert.Equal(t, 1, sink.attempts)
	assert.Equal(t, manifest.StatusFailed, sink.manifest.Status)
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestGenerator(Options{StripPrefix: "rules/"}, newMemorySink()).
		Generate(ctx, testDocument(t), manifest.Inputs{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Emitted)
}

func TestGenerate_DirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewDirSink(dir, true)
	require.NoError(t, err)

	_, err = newTestGenerator(Options{StripPrefix: "rules/"}, sink).
		Generate(context.Background(), testDocument(t), manifest.Inputs{})
	require.NoError(t, err)

	for _, name := range []string{"foo.json", "bar.json", ManifestFile} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr, name)
	}
	_, statErr := os.Stat(filepath.Join(dir, "empty.json"))
	assert.True(t, os.IsNotExist(statErr))

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	m, err := manifest.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.ID)
	assert.Len(t, m.Units, 2)
}

func TestGenerate_WriterSink(t *testing.T) {
	var buf bytes.Buffer
	_, err := newTestGenerator(Options{Format: ruledoc.FormatMarkdown, StripPrefix: "rules/"}, NewWriterSink(&buf)).
		Generate(context.Background(), testDocument(t), manifest.Inputs{})
	require.NoError(t, err)

	dec := json.NewDecoder(&buf)
	var names []string
	for dec.More() {
		var rs ruledoc.RuleSet
		require.NoError(t, dec.Decode(&rs))
		names = append(names, rs.Name)
		for _, rule := range rs.Definitions {
			assert.Empty(t, rule.DocumentationHTML)
		}
	}
	assert.Equal(t, []string{"foo", "bar"}, names)
}

type countingRecorder struct {
	units       map[metrics.UnitResult]int
	definitions map[string]int
	runs        int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{units: map[metrics.UnitResult]int{}, definitions: map[string]int{}}
}

func (c *countingRecorder) IncUnitResult(r metrics.UnitResult) { c.units[r]++ }
func (c *countingRecorder) AddDefinitions(kind string, n int) {
	if n > 0 {
		c.definitions[kind] += n
	}
}
func (c *countingRecorder) ObserveRunDuration(time.Duration) { c.runs++ }
