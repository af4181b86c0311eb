// Package main provides the privote cli to deal committee keys and to run
// vote plans.
//
// Unix example:
//
//	privote committee deal --members 3 --threshold 2 --out keys
//	privote plan simulate --plan plan.yaml --committee keys --db plans.db \
//	  --ballot alice:0:1 --ballot bob:0:2:5
//	privote plan status --id fund-10 --committee keys --db plans.db
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.dedis.ch/privote"
	"go.dedis.ch/privote/cli"
	"go.dedis.ch/privote/cli/ucli"
	committee "go.dedis.ch/privote/committee/command"
	voteplan "go.dedis.ch/privote/voteplan/command"
)

var builder = newBuilder()
var printer io.Writer = os.Stderr

func main() {
	err := run(os.Args, committee.Initializer{}, voteplan.Initializer{})
	if err != nil {
		fmt.Fprintf(printer, "%+v\n", err)
	}
}

func run(args []string, inits ...cli.Initializer) error {
	for _, init := range inits {
		init.SetCommands(builder)
	}

	app := builder.Build()
	err := app.Run(args)
	if err != nil {
		return err
	}

	return nil
}

func newBuilder() cli.Builder {
	b := ucli.NewBuilder("privote", nil, cli.BoolFlag{
		Name:  "debug",
		Usage: "enable the debug logs",
	}).(*ucli.Builder)

	b.SetUsage("private voting with threshold decryption of the tallies")
	b.SetBefore(setupLogger)

	return b
}

// setupLogger sends the logs to the standard error so that the output of the
// commands can be piped.
func setupLogger(flags cli.Flags) error {
	level := zerolog.InfoLevel
	if flags.Bool("debug") {
		level = zerolog.DebugLevel
	}

	privote.Logger = privote.Logger.Output(zerolog.ConsoleWriter{
		Out:        printer,
		TimeFormat: time.RFC3339,
	}).Level(level)

	return nil
}
