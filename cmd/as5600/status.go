package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/as5600"
	"github.com/mklimuk/as5600/cmd/as5600/console"
)

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "show magnet status, AGC and burn count",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		ctx := context.Background()
		strength, err := dev.GetMagnetStrength(ctx)
		if err != nil {
			return console.Exit(1, "error reading status: %s", console.Red(err))
		}
		switch strength {
		case as5600.MagnetNominal:
			console.PInfof(console.PictoMagnet, "magnet detected, field %s", console.Green(strength))
		case as5600.MagnetAbsent:
			console.PInfof(console.PictoStop, "no magnet detected")
		default:
			console.PInfof(console.PictoMagnet, "magnet detected, field %s", console.Yellow(strength))
		}
		agc, err := dev.GetAgc(ctx)
		if err != nil {
			return console.Exit(1, "error reading AGC: %s", console.Red(err))
		}
		console.PInfof(console.PictoGauge, "AGC %s", console.White(agc))
		count, err := dev.GetBurnCount(ctx)
		if err != nil {
			return console.Exit(1, "error reading burn count: %s", console.Red(err))
		}
		console.PInfof(console.PictoFire, "burn count %s", console.White(count))
		return nil
	},
}
