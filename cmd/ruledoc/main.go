package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ruledoc/cmd/ruledoc/commands"
	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("ruledoc"),
		kong.Description("Turn build-rule metadata into documentation view models."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	globals := &commands.Global{Stdout: os.Stdout}
	if err := ctx.Run(globals, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
