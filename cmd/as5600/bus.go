package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/as5600"
	"github.com/mklimuk/as5600/adapter"
	"github.com/mklimuk/as5600/wire"
)

// busFlags are shared by every command that talks to the chip.
var busFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "bus",
		Value: "soft",
		Usage: "bus backend: soft, periph or mcp2221",
	},
	&cli.StringFlag{
		Name:  "dev",
		Value: "1",
		Usage: "i2c bus name for the periph backend",
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "yaml pin map for the soft backend",
	},
}

// busConfig is the yaml file format for the soft backend.
type busConfig struct {
	Soft wire.SoftConfig `yaml:"soft"`
}

func openDevice(c *cli.Context) (*as5600.Device, func(), error) {
	switch c.String("bus") {
	case "mcp2221":
		bridge := adapter.NewMCP2221()
		return as5600.New(bridge), func() { _ = bridge.Release() }, nil
	case "periph":
		bus, err := wire.NewPeriph(c.String("dev"))
		if err != nil {
			return nil, nil, fmt.Errorf("could not open i2c bus: %w", err)
		}
		return as5600.New(bus), func() { _ = bus.Close() }, nil
	case "soft":
		config := busConfig{
			Soft: wire.SoftConfig{Chip: "gpiochip0", SDA: 2, SCL: 3},
		}
		if path := c.String("config"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, fmt.Errorf("could not read bus config: %w", err)
			}
			if err = yaml.Unmarshal(raw, &config); err != nil {
				return nil, nil, fmt.Errorf("could not parse bus config: %w", err)
			}
		}
		bus, err := wire.NewSoft(config.Soft)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open soft bus: %w", err)
		}
		return as5600.New(bus), func() { _ = bus.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown bus backend %q", c.String("bus"))
	}
}
