// Package command defines the cli commands to run and inspect vote plans.
package command

import (
	"os"

	"go.dedis.ch/privote/cli"
	"go.dedis.ch/privote/crypto"
	"go.dedis.ch/privote/serde"
)

// Initializer implements the vote plan initializer for the privote CLI.
//
// - implements cli.Initializer
type Initializer struct{}

// SetCommands implements cli.Initializer.
func (i Initializer) SetCommands(provider cli.Provider) {
	action := action{
		printer: os.Stdout,
		stream:  crypto.NewRandomStream(crypto.CryptographicRandomGenerator{}),
	}

	committeeFlag := cli.StringFlag{
		Name:  "committee",
		Usage: "directory of the committee key files",
		Env:   "PRIVOTE_COMMITTEE",
	}

	dbFlag := cli.StringFlag{
		Name:  "db",
		Usage: "path to the database of the vote plans",
		Env:   "PRIVOTE_DB",
	}

	formatFlag := cli.StringFlag{
		Name:  "format",
		Usage: "format of the key files and of the output: [JSON | CBOR]",
		Env:   "PRIVOTE_FORMAT",
		Value: string(serde.FormatJSON),
	}

	cmd := provider.SetCommand("plan")
	cmd.SetDescription("run and inspect vote plans")

	simulate := cmd.SetSubCommand("simulate")
	simulate.SetDescription("cast ballots on a vote plan, then close and decrypt it")
	simulate.SetFlags(
		cli.StringFlag{
			Name:     "plan",
			Usage:    "path to the YAML description of the plan",
			Required: true,
		},
		committeeFlag,
		dbFlag,
		cli.StringSliceFlag{
			Name:  "ballot",
			Usage: "ballot as voter:proposal:choice[:weight], can be repeated",
		},
		cli.IntFlag{
			Name:  "decryptors",
			Usage: "number of members that decrypt, all the available ones if zero",
		},
		formatFlag,
	)
	simulate.SetAction(action.simulateAction)

	status := cmd.SetSubCommand("status")
	status.SetDescription("print the status of a saved vote plan")
	status.SetFlags(
		cli.StringFlag{
			Name:     "id",
			Usage:    "identifier of the plan",
			Required: true,
		},
		committeeFlag,
		dbFlag,
		formatFlag,
	)
	status.SetAction(action.statusAction)

	list := cmd.SetSubCommand("list")
	list.SetDescription("print the identifiers of the saved vote plans")
	list.SetFlags(
		cli.StringFlag{
			Name:  "prefix",
			Usage: "only print the plans whose identifier starts with the prefix",
		},
		dbFlag,
	)
	list.SetAction(action.listAction)

	remove := cmd.SetSubCommand("delete")
	remove.SetDescription("delete a saved vote plan")
	remove.SetFlags(
		cli.StringFlag{
			Name:     "id",
			Usage:    "identifier of the plan",
			Required: true,
		},
		dbFlag,
	)
	remove.SetAction(action.deleteAction)
}
