package commands

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ruledoc/internal/config"
	"git.home.luguber.info/inful/ruledoc/internal/logfields"
	"git.home.luguber.info/inful/ruledoc/internal/observability"
)

// DefaultConfigPath is used when --config is not given. A missing file at this
// path means "use defaults"; a missing file anywhere else is an error.
const DefaultConfigPath = "ruledoc.yaml"

// Global context passed to subcommands.
type Global struct {
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"ruledoc.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json); overrides config"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Build documentation view models from a metadata document"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; set up logging once from flags.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(c.logger(config.LoggingConfig{}))
	return nil
}

// logger builds the process logger. Flags win over the configuration file.
func (c *CLI) logger(cfg config.LoggingConfig) *slog.Logger {
	level := cfg.Level.Slog()
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	return observability.NewLogger(os.Stderr, level, format == config.LogFormatJSON)
}

// loadConfig loads the configuration named by --config, falling back to
// defaults when the default path does not exist.
func (c *CLI) loadConfig() (*config.Config, []byte, error) {
	path := c.Config
	if path == "" {
		path = DefaultConfigPath
	}
	cfg, raw, err := config.Load(path)
	if err != nil {
		if path == DefaultConfigPath && stderrors.Is(err, fs.ErrNotExist) {
			slog.Debug("No configuration file, using defaults", logfields.Path(path))
			return config.Default(), nil, nil
		}
		return nil, nil, err
	}
	return cfg, raw, nil
}
