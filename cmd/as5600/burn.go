package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/as5600/cmd/as5600/console"
)

var burnCmd = cli.Command{
	Name:  "burn",
	Usage: "permanently program registers into the chip (IRREVERSIBLE)",
	Subcommands: []*cli.Command{
		&burnAngleCmd,
		&burnSettingsCmd,
	},
}

var burnConfirmFlag = cli.BoolFlag{
	Name:  "yes",
	Usage: "skip the interactive confirmation",
}

var burnAngleCmd = cli.Command{
	Name:  "angle",
	Usage: "burn the start and end positions (at most 3 times per chip)",
	Flags: append([]cli.Flag{&burnConfirmFlag}, busFlags...),
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("burning is irreversible and limited to 3 times per chip, continue?")
			if err != nil {
				return console.Exit(1, "could not read answer: %v", err)
			}
			if answer != console.Yes {
				console.Print("aborted")
				return nil
			}
		}
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		if err = dev.BurnAngle(context.Background()); err != nil {
			return console.Exit(1, "burn refused: %s", console.Red(err))
		}
		console.PInfof(console.PictoFire, "angle burned")
		return nil
	},
}

var burnSettingsCmd = cli.Command{
	Name:  "settings",
	Usage: "burn the max angle and configuration (exactly once per chip)",
	Flags: append([]cli.Flag{&burnConfirmFlag}, busFlags...),
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("this burn is allowed exactly once per chip, continue?")
			if err != nil {
				return console.Exit(1, "could not read answer: %v", err)
			}
			if answer != console.Yes {
				console.Print("aborted")
				return nil
			}
		}
		dev, release, err := openDevice(c)
		if err != nil {
			return console.Exit(1, "bus initialization error: %s", console.Red(err))
		}
		defer release()
		if err = dev.BurnMaxAngleAndConfig(context.Background()); err != nil {
			return console.Exit(1, "burn refused: %s", console.Red(err))
		}
		console.PInfof(console.PictoFire, "max angle and configuration burned")
		return nil
	},
}
