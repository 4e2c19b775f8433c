package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/ruledoc/internal/docgen"
	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/logfields"
	"git.home.luguber.info/inful/ruledoc/internal/manifest"
	"git.home.luguber.info/inful/ruledoc/internal/metadata"
	"git.home.luguber.info/inful/ruledoc/internal/metrics"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
	"git.home.luguber.info/inful/ruledoc/internal/watch"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Metadata    string `arg:"" help:"Metadata document (YAML or JSON)"`
	Output      string `short:"o" help:"Output directory for view models (overrides config)"`
	Format      string `short:"f" help:"Documentation format: html or markdown (overrides config)"`
	StripPrefix string `name:"strip-prefix" help:"Prefix removed from source paths (overrides config)"`
	Stdout      bool   `help:"Stream view models to stdout instead of writing files"`
	FailFast    bool   `name:"fail-fast" help:"Abort on the first unit that cannot be built"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile (overrides config)"`
	Watch       bool   `short:"w" help:"Regenerate whenever the metadata document changes"`
}

func (g *GenerateCmd) Run(globals *Global, root *CLI) error {
	cfg, rawConfig, err := root.loadConfig()
	if err != nil {
		return err
	}
	slog.SetDefault(root.logger(cfg.Logging))

	opts := docgen.OptionsFromConfig(cfg)
	opts.FailFast = g.FailFast
	if g.Format != "" {
		f, ferr := ruledoc.ParseFormat(g.Format)
		if ferr != nil {
			return errors.WrapError(ferr, errors.CategoryValidation, "invalid --format").Build()
		}
		opts.Format = f
	}
	if g.StripPrefix != "" {
		opts.StripPrefix = g.StripPrefix
	}
	outputDir := cfg.Output.Directory
	if g.Output != "" {
		outputDir = g.Output
	}
	metricsFile := cfg.Metrics.Textfile
	if g.MetricsFile != "" {
		metricsFile = g.MetricsFile
	}

	var sink docgen.Sink
	if g.Stdout {
		sink = docgen.NewWriterSink(globals.stdout())
	} else {
		dirSink, serr := docgen.NewDirSink(outputDir, cfg.Output.Clean)
		if serr != nil {
			return serr
		}
		sink = dirSink
	}

	generator := docgen.NewGenerator(opts, sink)
	var recorder *metrics.PrometheusRecorder
	if metricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		generator.WithRecorder(recorder)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var configHash string
	if rawConfig != nil {
		configHash = manifest.HashBytes(rawConfig)
	}
	generate := func(ctx context.Context) error {
		res, err := g.generateOnce(ctx, generator, configHash)
		if recorder != nil {
			if werr := recorder.WriteTextfile(metricsFile); werr != nil {
				slog.Warn("Failed to write metrics textfile", logfields.Path(metricsFile), logfields.Error(werr))
			}
		}
		if err != nil {
			return err
		}
		if !g.Stdout {
			fmt.Fprintf(globals.stdout(), "Generated %d documentation unit(s) in %s (%d empty, %d skipped)\n",
				len(res.Emitted), outputDir, len(res.Empty), len(res.Skipped))
			for _, s := range res.Skipped {
				fmt.Fprintf(globals.stdout(), "  skipped %s: %s\n", s.Source, s.Reason)
			}
			if res.Unchanged {
				fmt.Fprintln(globals.stdout(), "Outputs unchanged since previous run")
			}
		}
		return nil
	}

	if !g.Watch {
		return generate(ctx)
	}
	if err := generate(ctx); err != nil {
		slog.Error("Initial generation failed", logfields.Error(err))
	}
	w, err := watch.New([]string{g.Metadata}, watch.DefaultDebounce, generate)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// generateOnce reads the metadata document and runs one generation pass.
func (g *GenerateCmd) generateOnce(ctx context.Context, generator *docgen.Generator, configHash string) (*docgen.Result, error) {
	rawMetadata, err := os.ReadFile(g.Metadata)
	if err != nil {
		return nil, errors.FileSystemError("read metadata document").WithCause(err).
			WithContext("path", g.Metadata).
			Build()
	}
	doc, err := metadata.Read(bytes.NewReader(rawMetadata))
	if err != nil {
		return nil, err
	}

	return generator.Generate(ctx, doc, manifest.Inputs{
		MetadataHash: manifest.HashBytes(rawMetadata),
		ConfigHash:   configHash,
	})
}
