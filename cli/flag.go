package cli

// StringFlag defines a flag parsed as a string. Env optionally names an
// environment variable read when the flag is absent from the command line.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Usage    string
	Env      string
	Required bool
	Value    string
}

// Flag implements cli.Flag.
func (StringFlag) Flag() {}

// StringSliceFlag defines a flag that can be repeated, each occurrence
// appended to a slice of strings.
//
// - implements cli.Flag
type StringSliceFlag struct {
	Name     string
	Usage    string
	Env      string
	Required bool
	Value    []string
}

// Flag implements cli.Flag.
func (StringSliceFlag) Flag() {}

// IntFlag defines a flag parsed as an integer.
//
// - implements cli.Flag
type IntFlag struct {
	Name     string
	Usage    string
	Env      string
	Required bool
	Value    int
}

// Flag implements cli.Flag.
func (IntFlag) Flag() {}

// BoolFlag defines a switch.
//
// - implements cli.Flag
type BoolFlag struct {
	Name     string
	Usage    string
	Env      string
	Required bool
	Value    bool
}

// Flag implements cli.Flag.
func (BoolFlag) Flag() {}
