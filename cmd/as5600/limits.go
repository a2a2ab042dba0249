package main

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/as5600"
	"github.com/mklimuk/as5600/cmd/as5600/console"
)

var limitsCmd = cli.Command{
	Name:  "limits",
	Usage: "read and program the start/end/max angle limit registers",
	Subcommands: []*cli.Command{
		&limitsGetCmd,
		&limitsSetCmd,
	},
}

var limitsGetCmd = cli.Command{
	Name:  "get",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		ctx := context.Background()
		start, err := dev.GetStartPosition(ctx)
		if err != nil {
			return console.Exit(1, "error reading start position: %s", console.Red(err))
		}
		end, err := dev.GetEndPosition(ctx)
		if err != nil {
			return console.Exit(1, "error reading end position: %s", console.Red(err))
		}
		max, err := dev.GetMaxAngle(ctx)
		if err != nil {
			return console.Exit(1, "error reading max angle: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "start %s (%.1f°) end %s (%.1f°) max %s (%.1f°)",
			console.White(start), as5600.Degrees(start),
			console.White(end), as5600.Degrees(end),
			console.White(max), as5600.Degrees(max))
		return nil
	},
}

var limitsSetCmd = cli.Command{
	Name:      "set",
	ArgsUsage: "<start|end|max> [value]",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "capture",
			Usage: "use the magnet's current position instead of a value",
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return console.Exit(1, "expected a register name: start, end or max")
		}
		capture := c.Bool("capture")
		var value uint64
		if !capture {
			if c.NArg() != 2 {
				return console.Exit(1, "expected a value or --capture")
			}
			var err error
			value, err = strconv.ParseUint(c.Args().Get(1), 0, 16)
			if err != nil {
				return console.Exit(1, "could not parse value: %v", err)
			}
		}
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		ctx := context.Background()
		var confirmed uint16
		switch c.Args().Get(0) {
		case "start":
			if capture {
				confirmed, err = dev.CaptureStartPosition(ctx)
			} else {
				confirmed, err = dev.SetStartPosition(ctx, uint16(value))
			}
		case "end":
			if capture {
				confirmed, err = dev.CaptureEndPosition(ctx)
			} else {
				confirmed, err = dev.SetEndPosition(ctx, uint16(value))
			}
		case "max":
			if capture {
				confirmed, err = dev.CaptureMaxAngle(ctx)
			} else {
				confirmed, err = dev.SetMaxAngle(ctx, uint16(value))
			}
		default:
			return console.Exit(1, "unknown register %q", c.Args().Get(0))
		}
		if err != nil {
			return console.Exit(1, "error writing limit: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "%s register now reads %s (%.1f°)",
			c.Args().Get(0), console.White(confirmed), as5600.Degrees(confirmed))
		return nil
	},
}
