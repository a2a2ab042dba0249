// Package wire provides Bus implementations for the as5600 driver: a
// bit-banged two-wire master over GPIO character-device lines, a kernel
// i2c-dev backed bus via periph.io, and (in package adapter) a USB bridge.
package wire

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

var ErrNoAck = errors.New("wire: no ack from device")
var ErrReadUnderflow = errors.New("wire: read past available data")

// SoftConfig describes the GPIO lines and timing of a bit-banged bus.
type SoftConfig struct {
	Chip        string        `yaml:"chip"`
	SDA         int           `yaml:"sda"`
	SCL         int           `yaml:"scl"`
	ClockPeriod time.Duration `yaml:"clock_period"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Soft is a software two-wire master. Lines are emulated open-drain: driving
// low reconfigures the line as output 0, releasing it reconfigures it as
// input so the pull-up raises it. Clock stretching by the slave is honored up
// to the configured timeout.
type Soft struct {
	mx      sync.Mutex
	sda     *gpiocdev.Line
	scl     *gpiocdev.Line
	half    time.Duration
	timeout time.Duration

	txAddr byte
	tx     []byte
	rx     []byte
}

// NewSoft claims the configured GPIO lines and returns an idle bus. Both
// lines start released (high through the external pull-ups).
func NewSoft(config SoftConfig) (*Soft, error) {
	if config.ClockPeriod == 0 {
		config.ClockPeriod = 10 * time.Microsecond
	}
	if config.Timeout == 0 {
		config.Timeout = time.Second
	}
	sda, err := gpiocdev.RequestLine(config.Chip, config.SDA, gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("wire: could not claim SDA line %d: %w", config.SDA, err)
	}
	scl, err := gpiocdev.RequestLine(config.Chip, config.SCL, gpiocdev.AsInput)
	if err != nil {
		_ = sda.Close()
		return nil, fmt.Errorf("wire: could not claim SCL line %d: %w", config.SCL, err)
	}
	return &Soft{
		sda:     sda,
		scl:     scl,
		half:    config.ClockPeriod / 2,
		timeout: config.Timeout,
	}, nil
}

func (b *Soft) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	errSDA := b.sda.Close()
	errSCL := b.scl.Close()
	if errSDA != nil {
		return errSDA
	}
	return errSCL
}

func (b *Soft) BeginTransmission(address byte) {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.txAddr = address
	b.tx = b.tx[:0]
}

func (b *Soft) Write(by byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.tx = append(b.tx, by)
	return nil
}

// EndTransmission flushes the buffered write transaction to the wire:
// START, address with the write bit, payload, STOP.
func (b *Soft) EndTransmission() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	if err := b.start(); err != nil {
		return err
	}
	defer func() { _ = b.stop() }()
	if err := b.writeWireByte(b.txAddr << 1); err != nil {
		return fmt.Errorf("wire: address %#x not acknowledged: %w", b.txAddr, err)
	}
	for _, by := range b.tx {
		if err := b.writeWireByte(by); err != nil {
			return fmt.Errorf("wire: write to %#x failed: %w", b.txAddr, err)
		}
	}
	return nil
}

// RequestFrom performs a read transaction and buffers the received bytes for
// Read. The last byte is NACKed per the two-wire read protocol.
func (b *Soft) RequestFrom(address byte, count int) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	if err := b.start(); err != nil {
		return err
	}
	defer func() { _ = b.stop() }()
	if err := b.writeWireByte(address<<1 | 1); err != nil {
		return fmt.Errorf("wire: address %#x not acknowledged: %w", address, err)
	}
	for i := 0; i < count; i++ {
		by, err := b.readWireByte(i < count-1)
		if err != nil {
			return fmt.Errorf("wire: read from %#x failed: %w", address, err)
		}
		b.rx = append(b.rx, by)
	}
	return nil
}

func (b *Soft) Available() int {
	b.mx.Lock()
	defer b.mx.Unlock()
	return len(b.rx)
}

func (b *Soft) Read() (byte, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if len(b.rx) == 0 {
		return 0, ErrReadUnderflow
	}
	by := b.rx[0]
	b.rx = b.rx[1:]
	return by, nil
}

func (b *Soft) SetTimeout(timeout time.Duration) {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.timeout = timeout
}

// drive pulls a line low, release lets the pull-up raise it.
func drive(l *gpiocdev.Line) error   { return l.Reconfigure(gpiocdev.AsOutput(0)) }
func release(l *gpiocdev.Line) error { return l.Reconfigure(gpiocdev.AsInput) }

// waitClockHigh releases SCL and waits for it to actually rise; a slave may
// hold it low to stretch the clock.
func (b *Soft) waitClockHigh() error {
	if err := release(b.scl); err != nil {
		return err
	}
	deadline := time.Now().Add(b.timeout)
	for {
		v, err := b.scl.Value()
		if err != nil {
			return err
		}
		if v != 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("wire: clock stretch timeout")
		}
		time.Sleep(b.half)
	}
}

// start issues a START condition: SDA falls while SCL is high.
func (b *Soft) start() error {
	if err := release(b.sda); err != nil {
		return err
	}
	if err := b.waitClockHigh(); err != nil {
		return err
	}
	time.Sleep(b.half)
	if err := drive(b.sda); err != nil {
		return err
	}
	time.Sleep(b.half)
	return drive(b.scl)
}

// stop issues a STOP condition: SDA rises while SCL is high.
func (b *Soft) stop() error {
	if err := drive(b.sda); err != nil {
		return err
	}
	time.Sleep(b.half)
	if err := b.waitClockHigh(); err != nil {
		return err
	}
	time.Sleep(b.half)
	if err := release(b.sda); err != nil {
		return err
	}
	time.Sleep(b.half)
	return nil
}

func (b *Soft) writeBit(bit bool) error {
	var err error
	if bit {
		err = release(b.sda)
	} else {
		err = drive(b.sda)
	}
	if err != nil {
		return err
	}
	time.Sleep(b.half)
	if err = b.waitClockHigh(); err != nil {
		return err
	}
	time.Sleep(b.half)
	return drive(b.scl)
}

func (b *Soft) readBit() (bool, error) {
	if err := release(b.sda); err != nil {
		return false, err
	}
	time.Sleep(b.half)
	if err := b.waitClockHigh(); err != nil {
		return false, err
	}
	v, err := b.sda.Value()
	if err != nil {
		return false, err
	}
	time.Sleep(b.half)
	if err = drive(b.scl); err != nil {
		return false, err
	}
	return v != 0, nil
}

// writeWireByte shifts out one byte MSB first and checks the ack bit.
func (b *Soft) writeWireByte(by byte) error {
	for i := 7; i >= 0; i-- {
		if err := b.writeBit(by&(1<<i) != 0); err != nil {
			return err
		}
	}
	nack, err := b.readBit()
	if err != nil {
		return err
	}
	if nack {
		return ErrNoAck
	}
	return nil
}

// readWireByte shifts in one byte MSB first and sends the ack bit; the last
// byte of a transaction is NACKed.
func (b *Soft) readWireByte(ack bool) (byte, error) {
	var by byte
	for i := 0; i < 8; i++ {
		bit, err := b.readBit()
		if err != nil {
			return 0, err
		}
		by <<= 1
		if bit {
			by |= 1
		}
	}
	if err := b.writeBit(!ack); err != nil {
		return 0, err
	}
	return by, nil
}
