package main

import (
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/synadia-labs/s2proto-go/replay"
	"github.com/synadia-labs/s2proto-go/s2dump/core"
	"github.com/synadia-labs/s2proto-go/schema"
)

// CLI defines the s2dump command-line interface.
//
// Section flags may be combined; with none set the header is printed.
// Sections other than the header and attributes need the replay's
// protocol, loaded from --protocols.
type CLI struct {
	Replay    string `arg:"" type:"existingfile" help:"Path to the .SC2Replay file"`
	Protocols string `short:"p" type:"existingdir" help:"Directory of *.s2proto protocol files"`
	Format    string `short:"f" enum:"text,diag,cbor" default:"text" help:"Output format (text, diag, cbor)"`

	Raw           bool `help:"Print the undecoded header in diagnostic notation"`
	Header        bool `help:"Print the header"`
	Details       bool `help:"Print the game details"`
	InitData      bool `name:"initdata" help:"Print the init data"`
	GameEvents    bool `name:"gameevents" help:"Print the game events"`
	MessageEvents bool `name:"messageevents" help:"Print the message events"`
	TrackerEvents bool `name:"trackerevents" help:"Print the tracker events"`
	Attributes    bool `help:"Print the attributes events"`

	Verbose bool `short:"v" help:"Enable verbose diagnostics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("s2dump"),
		kong.Description("Decode and print the sections of a StarCraft II replay."),
	)

	log, err := newLogger(cli.Verbose)
	ctx.FatalIfErrorf(err)
	defer log.Sync()
	schema.SetLogger(log)
	replay.SetLogger(log)

	err = core.Run(os.Stdout, cli.Replay, core.Options{
		Protocols:     cli.Protocols,
		Format:        cli.Format,
		Raw:           cli.Raw,
		Header:        cli.Header,
		Details:       cli.Details,
		InitData:      cli.InitData,
		GameEvents:    cli.GameEvents,
		MessageEvents: cli.MessageEvents,
		TrackerEvents: cli.TrackerEvents,
		Attributes:    cli.Attributes,
		Logger:        log,
	})
	ctx.FatalIfErrorf(err)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
