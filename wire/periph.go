package wire

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Periph adapts a kernel i2c-dev bus opened through periph.io to the Bus
// contract. Bytes queued between BeginTransmission and EndTransmission are
// flushed as a single Tx write; RequestFrom issues a Tx read and buffers the
// result for Read. Transfer timeouts belong to the kernel driver, so
// SetTimeout is a no-op here.
type Periph struct {
	mx  sync.Mutex
	bus i2c.BusCloser

	txAddr byte
	tx     []byte
	rx     []byte
}

// NewPeriph initializes the periph host and opens the named i2c bus, e.g.
// "/dev/i2c-1" or "1".
func NewPeriph(dev string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("wire: could not init host: %w", err)
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("wire: could not open i2c bus: %w", err)
	}
	return &Periph{bus: bus}, nil
}

func (b *Periph) BeginTransmission(address byte) {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.txAddr = address
	b.tx = b.tx[:0]
}

func (b *Periph) Write(by byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.tx = append(b.tx, by)
	return nil
}

func (b *Periph) EndTransmission() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	if err := b.bus.Tx(uint16(b.txAddr), b.tx, nil); err != nil {
		return fmt.Errorf("wire: could not write to %#x: %w", b.txAddr, err)
	}
	return nil
}

func (b *Periph) RequestFrom(address byte, count int) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	buf := make([]byte, count)
	if err := b.bus.Tx(uint16(address), nil, buf); err != nil {
		return fmt.Errorf("wire: could not read from %#x: %w", address, err)
	}
	b.rx = append(b.rx, buf...)
	return nil
}

func (b *Periph) Available() int {
	b.mx.Lock()
	defer b.mx.Unlock()
	return len(b.rx)
}

func (b *Periph) Read() (byte, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if len(b.rx) == 0 {
		return 0, ErrReadUnderflow
	}
	by := b.rx[0]
	b.rx = b.rx[1:]
	return by, nil
}

func (b *Periph) SetTimeout(timeout time.Duration) {}

func (b *Periph) Close() error {
	return b.bus.Close()
}
