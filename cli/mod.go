// Package cli defines the Builder type, which allows one to build a CLI
// application in a modular way.
//
//	cmd := builder.SetCommand("plan")
//	sub := cmd.SetSubCommand("status")
//	sub.SetDescription("Print the status of a vote plan")
//	sub.SetFlags(cli.StringFlag{Name: "id", Required: true})
//	sub.SetAction(func(flags Flags) error {
//		fmt.Printf("plan %s\n", flags.String("id"))
//		return nil
//	})
//
//	builder.Build().Run(os.Args)
//
// An implementation of the builder is free to provide primitives to create
// more complex actions.
package cli

// Provider is the interface to declare the commands of an application.
type Provider interface {
	// SetCommand creates a new command with the given name and returns its
	// builder.
	SetCommand(name string) CommandBuilder
}

// Builder is an application builder interface. One can set properties of an
// application then build it.
type Builder interface {
	Provider

	// Build returns the application.
	Build() Application
}

// Initializer is implemented by the packages that contribute commands.
type Initializer interface {
	SetCommands(Provider)
}

// Application is the main interface to run the CLI.
type Application interface {
	Run(arguments []string) error
}

// CommandBuilder is a command builder interface. One can set properties of a
// specific command like its name and description and what it should do when
// invoked.
type CommandBuilder interface {
	// SetDescription sets the value of the description for this command.
	SetDescription(value string)

	// SetFlags sets the flags for this command.
	SetFlags(...Flag)

	// SetAction sets the action for this command.
	SetAction(Action)

	// SetSubCommand creates a subcommand for this command.
	SetSubCommand(name string) CommandBuilder
}

// Action is a function that will be executed when a command is invoked.
type Action func(Flags) error

// Flag is an identifier for the definition of the flags.
type Flag interface {
	Flag()
}

// Flags provides the primitives to an action to read the flags.
type Flags interface {
	String(name string) string

	StringSlice(name string) []string

	Path(name string) string

	Int(name string) int

	Bool(name string) bool
}
