package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/as5600"
	"github.com/mklimuk/as5600/cmd/as5600/console"
)

var angleCmd = cli.Command{
	Name:    "angle",
	Aliases: []string{"read"},
	Usage:   "read the magnet position",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "watch",
			Usage: "keep polling at the given interval",
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if interval := c.Duration("watch"); interval > 0 {
			if err = watchAngle(ctx, dev, interval); err != nil {
				return console.Exit(1, "error reading angle: %s", console.Red(err))
			}
			return nil
		}
		if err = printAngle(ctx, dev); err != nil {
			return console.Exit(1, "error reading angle: %s", console.Red(err))
		}
		return nil
	},
}

// watchAngle polls the sensor at the given interval until the context is
// cancelled, typically by SIGINT or SIGTERM.
func watchAngle(ctx context.Context, dev *as5600.Device, interval time.Duration) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		if err := printAngle(ctx, dev); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

func printAngle(ctx context.Context, dev *as5600.Device) error {
	raw, err := dev.GetRawAngle(ctx)
	if err != nil {
		return err
	}
	scaled, err := dev.GetScaledAngle(ctx)
	if err != nil {
		return err
	}
	magnitude, err := dev.GetMagnitude(ctx)
	if err != nil {
		return err
	}
	console.PInfof(console.PictoCompass, "raw %s (%.1f°) scaled %s magnitude %s",
		console.White(raw), as5600.Degrees(raw), console.White(scaled), console.White(magnitude))
	return nil
}
