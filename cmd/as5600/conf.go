package main

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/as5600"
	"github.com/mklimuk/as5600/cmd/as5600/console"
)

var confCmd = cli.Command{
	Name:  "conf",
	Usage: "read and program the configuration register",
	Subcommands: []*cli.Command{
		&confGetCmd,
		&confSetCmd,
		&confModeCmd,
	},
}

var confGetCmd = cli.Command{
	Name:  "get",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		conf, err := dev.GetConf(context.Background())
		if err != nil {
			return console.Exit(1, "error reading configuration: %s", console.Red(err))
		}
		console.Printf("CONF: %#04x\n", conf)
		return nil
	},
}

var confSetCmd = cli.Command{
	Name:      "set",
	ArgsUsage: "<value>",
	Flags:     busFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		value, err := strconv.ParseUint(c.Args().Get(0), 0, 16)
		if err != nil {
			return console.Exit(1, "could not parse value: %v", err)
		}
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		if err = dev.SetConf(context.Background(), uint16(value)); err != nil {
			return console.Exit(1, "error writing configuration: %s", console.Red(err))
		}
		console.Infof("configuration written")
		return nil
	},
}

var confModeCmd = cli.Command{
	Name:      "mode",
	Usage:     "select the output stage",
	ArgsUsage: "<pwm|analog|analog-reduced>",
	Flags:     busFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		var mode as5600.OutputMode
		switch c.Args().Get(0) {
		case "pwm":
			mode = as5600.OutputPWM
		case "analog":
			mode = as5600.OutputAnalogFull
		case "analog-reduced":
			mode = as5600.OutputAnalogReduced
		default:
			return console.Exit(1, "unknown output mode %q", c.Args().Get(0))
		}
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		if err = dev.SetOutputMode(context.Background(), mode); err != nil {
			return console.Exit(1, "error setting output mode: %s", console.Red(err))
		}
		console.Infof("output mode set to %s", c.Args().Get(0))
		return nil
	},
}
