package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play a table interactively in the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket gateway"`
	Watch    WatchCmd         `cmd:"" help:"Follow a gateway's table events"`
	Simulate SimulateCmd      `cmd:"" help:"Soak the engine with randomized hands"`
	Export   ExportCmd        `cmd:"" help:"Convert archived hand snapshots to PHH"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ploscope"),
		kong.Description("Pot-limit Omaha betting engine and table session tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
