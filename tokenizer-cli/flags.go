package tokenizercli

import (
	"strings"

	"github.com/urfave/cli/v2"
)

var CommonOpts struct {
	Console bool
	Env     string
	Port    int
}

var ConsoleFlag = cli.BoolFlag{
	Name:        "console",
	Usage:       "whether to run in console mode or lambda mode",
	Value:       false,
	EnvVars:     []string{"CONSOLE"},
	Destination: &CommonOpts.Console,
}
var EnvFlag = cli.StringFlag{
	Name:        "env",
	Usage:       "environment",
	Value:       "local",
	EnvVars:     []string{"ENV"},
	Destination: &CommonOpts.Env,
}
var PortFlag = func(p int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:        "port",
		Usage:       "Port to listen to, if running locally",
		Value:       p,
		EnvVars:     []string{"PORT"},
		Destination: &CommonOpts.Port,
	}
}

var CommonFlags = []cli.Flag{
	&ConsoleFlag,
	&EnvFlag,
}

// StringFlag builds a string flag whose env var name is derived from the
// flag name, e.g. "queues-table" reads QUEUES_TABLE.
func StringFlag(name, usage string, destination *string, value ...string) *cli.StringFlag {
	var defaultValue string
	if len(value) > 0 {
		defaultValue = value[0]
	}
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Value:       defaultValue,
		EnvVars:     []string{envVar(name)},
		Destination: destination,
	}
}

func envVar(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
