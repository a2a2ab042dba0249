package as5600

import (
	"context"
	"fmt"
	"time"
)

const availablePollInterval = 50 * time.Microsecond

// readByte selects a register and reads back a single byte.
func (d *Device) readByte(ctx context.Context, reg byte) (byte, error) {
	if err := d.selectRegister(reg); err != nil {
		return 0, err
	}
	if err := d.bus.RequestFrom(d.addr, 1); err != nil {
		return 0, fmt.Errorf("as5600: read request for register %#x failed: %w", reg, err)
	}
	if err := d.waitAvailable(ctx, 1); err != nil {
		return 0, err
	}
	b, err := d.bus.Read()
	if err != nil {
		return 0, fmt.Errorf("as5600: could not read register %#x: %w", reg, err)
	}
	return b, nil
}

// readWord reads a 16-bit register using the strategy pinned in wordStrategy.
// Registers without an entry get the split strategy; auto-increment is only
// guaranteed for the registers explicitly marked atomic.
func (d *Device) readWord(ctx context.Context, reg byte) (uint16, error) {
	if wordStrategy[reg] == readAtomic {
		return d.readWordAtomic(ctx, reg)
	}
	return d.readWordSplit(ctx, reg)
}

// readWordAtomic reads both bytes of a word register in one unbroken
// transaction starting at the high byte. Use only for the raw angle, scaled
// angle and magnitude registers.
func (d *Device) readWordAtomic(ctx context.Context, reg byte) (uint16, error) {
	if err := d.selectRegister(reg); err != nil {
		return 0, err
	}
	if err := d.bus.RequestFrom(d.addr, 2); err != nil {
		return 0, fmt.Errorf("as5600: read request for register %#x failed: %w", reg, err)
	}
	if err := d.waitAvailable(ctx, 2); err != nil {
		return 0, err
	}
	high, err := d.bus.Read()
	if err != nil {
		return 0, fmt.Errorf("as5600: could not read register %#x: %w", reg, err)
	}
	low, err := d.bus.Read()
	if err != nil {
		return 0, fmt.Errorf("as5600: could not read register %#x: %w", reg+1, err)
	}
	return uint16(high)<<8 | uint16(low), nil
}

// readWordSplit reads the two halves of a word register in independent
// one-byte transactions at reg and reg+1.
func (d *Device) readWordSplit(ctx context.Context, reg byte) (uint16, error) {
	high, err := d.readByte(ctx, reg)
	if err != nil {
		return 0, err
	}
	low, err := d.readByte(ctx, reg+1)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// writeByte writes a single byte to a register in one transaction. There is
// no read-back; callers that need confirmation read the register themselves.
func (d *Device) writeByte(reg byte, value byte) error {
	d.bus.BeginTransmission(d.addr)
	if err := d.bus.Write(reg); err != nil {
		return fmt.Errorf("as5600: could not select register %#x: %w", reg, err)
	}
	if err := d.bus.Write(value); err != nil {
		return fmt.Errorf("as5600: could not write register %#x: %w", reg, err)
	}
	if err := d.bus.EndTransmission(); err != nil {
		return fmt.Errorf("as5600: write to register %#x failed: %w", reg, err)
	}
	return nil
}

// writeWord writes the high byte at reg and the low byte at reg+1 as two
// transactions. The chip needs time to latch each byte before it accepts the
// next write; skipping the settling delay risks a torn value.
func (d *Device) writeWord(ctx context.Context, reg byte, value uint16) error {
	if err := d.writeByte(reg, byte(value>>8)); err != nil {
		return err
	}
	if err := d.settle(ctx); err != nil {
		return err
	}
	if err := d.writeByte(reg+1, byte(value)); err != nil {
		return err
	}
	return d.settle(ctx)
}

func (d *Device) settle(ctx context.Context) error {
	timer := time.NewTimer(d.settleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// selectRegister sets the chip's address pointer with a bare write
// transaction.
func (d *Device) selectRegister(reg byte) error {
	d.bus.BeginTransmission(d.addr)
	if err := d.bus.Write(reg); err != nil {
		return fmt.Errorf("as5600: could not select register %#x: %w", reg, err)
	}
	if err := d.bus.EndTransmission(); err != nil {
		return fmt.Errorf("as5600: could not select register %#x: %w", reg, err)
	}
	return nil
}

// waitAvailable polls the bus until count bytes are drainable. It is a
// bounded wait: ErrBusTimeout after the configured read timeout, ctx.Err on
// cancellation.
func (d *Device) waitAvailable(ctx context.Context, count int) error {
	if d.bus.Available() >= count {
		return nil
	}
	timeout := time.NewTimer(d.readTimeout)
	defer timeout.Stop()
	tick := time.NewTicker(availablePollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return ErrBusTimeout
		case <-tick.C:
			if d.bus.Available() >= count {
				return nil
			}
		}
	}
}
