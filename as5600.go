// Package as5600 drives the AMS AS5600 contactless magnetic rotary position
// sensor over a two-wire bus.
//
// The driver is a thin, fully synchronous layer over a Bus collaborator:
// every accessor issues fresh bus transactions and nothing is cached. It is
// not safe for concurrent use from multiple goroutines beyond the internal
// serialization of single operations; composite sequences (write limit, read
// back) carry no atomicity guarantee against external bus activity.
//
// Typical usage:
//
//	bus, _ := wire.NewSoft(wire.SoftConfig{Chip: "gpiochip0", SDA: 2, SCL: 3})
//	dev := as5600.New(bus)
//	angle, err := dev.GetRawAngle(ctx)
package as5600

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultAddress is the fixed 7-bit bus address of the AS5600.
const DefaultAddress byte = 0x36

// DegreesPerLSB is the angular value of one raw count (12-bit over 360°).
const DegreesPerLSB = 0.087

// Degrees converts a raw register value to degrees.
func Degrees(raw uint16) float64 {
	return float64(raw) * DegreesPerLSB
}

// OutputMode selects the output stage configured by SetOutputMode.
type OutputMode int

const (
	// OutputPWM selects the digital PWM output.
	OutputPWM OutputMode = 0
	// OutputAnalogFull selects the analog output over the full GND-VDD range.
	// This is the chip default.
	OutputAnalogFull OutputMode = 1
	// OutputAnalogReduced selects the analog output over the reduced
	// 10%-90% range.
	OutputAnalogReduced OutputMode = 2
)

type Config struct {
	Address     byte
	SettleDelay time.Duration
	ReadTimeout time.Duration
}

type Option func(*Config)

// WithAddress overrides the chip bus address. Only useful behind an address
// translator; the chip itself answers at DefaultAddress.
func WithAddress(address byte) Option {
	return func(c *Config) {
		c.Address = address
	}
}

// WithSettleDelay overrides the delay inserted after each byte of a word
// write. The chip needs at least 2ms to latch a byte.
func WithSettleDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.SettleDelay = delay
	}
}

// WithReadTimeout overrides how long a read waits for bytes from the bus
// before failing with ErrBusTimeout.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ReadTimeout = timeout
	}
}

// Device represents an AS5600 behind a Bus.
type Device struct {
	mx          sync.Mutex
	bus         Bus
	addr        byte
	settleDelay time.Duration
	readTimeout time.Duration
}

func New(bus Bus, opts ...Option) *Device {
	config := Config{
		Address:     DefaultAddress,
		SettleDelay: 2 * time.Millisecond,
		ReadTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&config)
	}
	bus.SetTimeout(config.ReadTimeout)
	return &Device{
		bus:         bus,
		addr:        config.Address,
		settleDelay: config.SettleDelay,
		readTimeout: config.ReadTimeout,
	}
}

// Address returns the bus address the driver talks to.
func (d *Device) Address() byte {
	return d.addr
}

// GetRawAngle returns the unmodified magnet position. Start, end and max
// angle settings do not apply. The full 16-bit register content is returned
// unmasked so higher-resolution chip revisions keep working.
func (d *Device) GetRawAngle(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regRawAngle)
}

// GetScaledAngle returns the magnet position remapped through the configured
// start, end and max angle limits.
func (d *Device) GetScaledAngle(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regAngle)
}

// GetMagnitude returns the CORDIC magnitude of the magnetic field.
func (d *Device) GetMagnitude(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regMagnitude)
}

// GetStartPosition returns the ZPOS register content.
func (d *Device) GetStartPosition(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regZPOS)
}

// GetEndPosition returns the MPOS register content.
func (d *Device) GetEndPosition(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regMPOS)
}

// GetMaxAngle returns the MANG register content.
func (d *Device) GetMaxAngle(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regMANG)
}

// SetStartPosition writes the start position limit and returns the value read
// back from the chip, which is hardware truth rather than an echo of the
// input.
func (d *Device) SetStartPosition(ctx context.Context, value uint16) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.setLimit(ctx, regZPOS, value)
}

// CaptureStartPosition sets the start position limit to the magnet's current
// raw angle and returns the value read back from the chip.
func (d *Device) CaptureStartPosition(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.captureLimit(ctx, regZPOS)
}

// SetEndPosition writes the end position limit and returns the read-back
// value.
func (d *Device) SetEndPosition(ctx context.Context, value uint16) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.setLimit(ctx, regMPOS, value)
}

// CaptureEndPosition sets the end position limit to the magnet's current raw
// angle and returns the read-back value.
func (d *Device) CaptureEndPosition(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.captureLimit(ctx, regMPOS)
}

// SetMaxAngle writes the max angle register and returns the read-back value.
// Writing this register zeros out the end position register.
func (d *Device) SetMaxAngle(ctx context.Context, value uint16) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.setLimit(ctx, regMANG, value)
}

// CaptureMaxAngle sets the max angle register to the magnet's current raw
// angle and returns the read-back value.
func (d *Device) CaptureMaxAngle(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.captureLimit(ctx, regMANG)
}

// GetConf returns the CONF register content.
func (d *Device) GetConf(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readWord(ctx, regCONF)
}

// SetConf writes the CONF register.
func (d *Device) SetConf(ctx context.Context, value uint16) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.writeWord(ctx, regCONF, value); err != nil {
		return fmt.Errorf("as5600: could not write configuration: %w", err)
	}
	return nil
}

// SetOutputMode rewrites bits 5:4 of the low configuration byte to select the
// output stage. Unrecognized modes fall through to the chip default
// (full-range analog, both bits clear).
func (d *Device) SetOutputMode(ctx context.Context, mode OutputMode) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	confLow := regCONF + 1
	current, err := d.readByte(ctx, confLow)
	if err != nil {
		return fmt.Errorf("as5600: could not read configuration: %w", err)
	}
	current &^= confOutputMask
	switch mode {
	case OutputPWM:
		current |= 0b100000
	case OutputAnalogReduced:
		current |= 0b010000
	}
	if err := d.writeByte(confLow, current); err != nil {
		return fmt.Errorf("as5600: could not write output mode: %w", err)
	}
	return nil
}

func (d *Device) setLimit(ctx context.Context, reg byte, value uint16) (uint16, error) {
	if err := d.writeWord(ctx, reg, value); err != nil {
		return 0, err
	}
	return d.readWordSplit(ctx, reg)
}

func (d *Device) captureLimit(ctx context.Context, reg byte) (uint16, error) {
	current, err := d.readWord(ctx, regRawAngle)
	if err != nil {
		return 0, fmt.Errorf("as5600: could not read current position: %w", err)
	}
	return d.setLimit(ctx, reg, current)
}
