// Package command defines the cli commands of the committee package.
package command

import (
	"os"

	"go.dedis.ch/privote/cli"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto"
	"go.dedis.ch/privote/serde"
)

// Initializer implements the committee initializer for the privote CLI.
//
// - implements cli.Initializer
type Initializer struct{}

// SetCommands implements cli.Initializer.
func (i Initializer) SetCommands(provider cli.Provider) {
	action := action{
		printer:  os.Stdout,
		stream:   crypto.NewRandomStream(crypto.CryptographicRandomGenerator{}),
		saveFile: SaveFile,
	}

	cmd := provider.SetCommand("committee")
	cmd.SetDescription("manage the key material of a decryption committee")

	deal := cmd.SetSubCommand("deal")
	deal.SetDescription("create the keys of a committee and its members")
	deal.SetFlags(
		cli.IntFlag{
			Name:  "members",
			Usage: "number of members",
			Value: 3,
		},
		cli.IntFlag{
			Name:  "threshold",
			Usage: "number of members required to decrypt",
			Value: 2,
		},
		cli.StringFlag{
			Name:  "scheme",
			Usage: "sharing scheme: [shamir | additive]",
			Value: committee.Shamir.String(),
		},
		cli.BoolFlag{
			Name:  "dkg",
			Usage: "run a distributed key generation instead of a trusted dealer",
		},
		cli.StringFlag{
			Name:     "out",
			Usage:    "directory the key files are written to",
			Required: true,
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "format of the key files: [JSON | CBOR]",
			Env:   "PRIVOTE_FORMAT",
			Value: string(serde.FormatJSON),
		},
		cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite existing key files",
		},
	)
	deal.SetAction(action.dealAction)
}
