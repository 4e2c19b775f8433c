package docgen

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/manifest"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

// ManifestFile is the name of the run manifest written by DirSink.
const ManifestFile = "manifest.json"

// Sink receives the encoded view model of every emitted documentation unit.
type Sink interface {
	Write(ctx context.Context, rs *ruledoc.RuleSet, model []byte) error
}

// ManifestSink is implemented by sinks that also persist the run manifest.
// ReadManifest returns nil without error when no manifest has been written yet.
type ManifestSink interface {
	ReadManifest(ctx context.Context) (*manifest.RunManifest, error)
	WriteManifest(ctx context.Context, m *manifest.RunManifest) error
}

// DirSink writes one <output_file>.json per unit under a directory.
type DirSink struct {
	dir string
}

// NewDirSink returns a sink rooted at dir. With clean set the directory is
// removed first so stale models from earlier runs disappear.
func NewDirSink(dir string, clean bool) (*DirSink, error) {
	if dir == "" {
		return nil, errors.ValidationError("output directory is required").Build()
	}
	if clean {
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.FileSystemError("clean output directory").WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.FileSystemError("create output directory").WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return &DirSink{dir: dir}, nil
}

// ModelPath returns the path, relative to the sink root, that rs is written to.
func ModelPath(rs *ruledoc.RuleSet) string {
	name := rs.OutputFile
	if name == "" {
		name = rs.Name
	}
	return name + ".json"
}

func (s *DirSink) Write(_ context.Context, rs *ruledoc.RuleSet, model []byte) error {
	modelPath := ModelPath(rs)
	if path.Clean(modelPath) == ManifestFile {
		return errors.ConfigError("output file collides with the run manifest").
			WithContext("source", rs.Source).
			WithContext("output", rs.OutputFile).
			Build()
	}
	return s.writeFile(modelPath, model)
}

func (s *DirSink) ReadManifest(_ context.Context) (*manifest.RunManifest, error) {
	fullPath := filepath.Join(s.dir, ManifestFile)
	// #nosec G304 -- the manifest lives at a fixed name under the sink root.
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.FileSystemError("read manifest").WithCause(err).
			WithContext("path", fullPath).
			Build()
	}
	m, err := manifest.FromJSON(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInput, "decode manifest").
			WithContext("path", fullPath).
			Build()
	}
	return m, nil
}

func (s *DirSink) WriteManifest(_ context.Context, m *manifest.RunManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode manifest").Build()
	}
	return s.writeFile(ManifestFile, data)
}

// writeFile writes data to relativePath under the sink root, refusing paths
// that escape it.
func (s *DirSink) writeFile(relativePath string, data []byte) error {
	cleanRel := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return errors.ValidationError("output path escapes output directory").
			WithContext("path", relativePath).
			Build()
	}

	fullPath := filepath.Join(s.dir, cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return errors.FileSystemError("create output directory").WithCause(err).
			WithContext("path", filepath.Dir(fullPath)).
			Build()
	}
	// #nosec G306 -- view models are meant to be read by the rendering step.
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return errors.FileSystemError("write output file").WithCause(err).
			WithContext("path", fullPath).
			Build()
	}
	return nil
}

// WriterSink streams every model to w, one JSON document per line group.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(_ context.Context, _ *ruledoc.RuleSet, model []byte) error {
	if _, err := s.w.Write(append(model, '\n')); err != nil {
		return errors.FileSystemError("write model").WithCause(err).Build()
	}
	return nil
}
