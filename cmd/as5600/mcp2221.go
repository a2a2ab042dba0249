package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/as5600/adapter"
	"github.com/mklimuk/as5600/cmd/as5600/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "inspect and manage the MCP2221 USB bridge",
	Subcommands: []*cli.Command{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Usage: "dump the bridge's I2C engine state",
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221()
		status, err := a.Status()
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		enc := yaml.NewEncoder(os.Stdout)
		if err = enc.Encode(status); err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel any pending transfer and free the I2C engine",
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221()
		if err := a.Release(); err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		console.Infof("bus released")
		return nil
	},
}
