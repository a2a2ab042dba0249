package as5600

import (
	"context"
	"errors"
	"fmt"
)

// maxAngleBurns is the hardware limit on angle burns.
const maxAngleBurns = 3

// minBurnableAngle is the smallest max angle, in degrees, the chip accepts
// for a settings burn.
const minBurnableAngle = 18.0

var (
	// ErrNoMagnet means no magnet was detected, so there is no position worth
	// persisting.
	ErrNoMagnet = errors.New("as5600: no magnet detected")
	// ErrBurnLimitExceeded means the hardware burn allowance is used up: three
	// angle burns, or any prior burn for the settings burn.
	ErrBurnLimitExceeded = errors.New("as5600: burn limit exceeded")
	// ErrUselessBurn means both start and end positions are zero and a burn
	// would persist nothing meaningful.
	ErrUselessBurn = errors.New("as5600: start and end positions are not set")
	// ErrMaxAngleTooSmall means the max angle register converts to less than
	// the 18 degree minimum the chip supports.
	ErrMaxAngleTooSmall = errors.New("as5600: max angle below 18 degrees")
)

// BurnAngle permanently programs the start and end position registers into
// non-volatile memory. The chip accepts at most three angle burns over its
// lifetime and there is no rollback. Preconditions are evaluated from freshly
// read register state; on success the command is issued without post-burn
// verification beyond what GetBurnCount shows afterwards.
func (d *Device) BurnAngle(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	zpos, err := d.readWord(ctx, regZPOS)
	if err != nil {
		return fmt.Errorf("as5600: could not read start position: %w", err)
	}
	mpos, err := d.readWord(ctx, regMPOS)
	if err != nil {
		return fmt.Errorf("as5600: could not read end position: %w", err)
	}
	// the burn sequence reads all limit registers up front
	if _, err = d.readWord(ctx, regMANG); err != nil {
		return fmt.Errorf("as5600: could not read max angle: %w", err)
	}
	detected, err := d.magnetDetected(ctx)
	if err != nil {
		return fmt.Errorf("as5600: could not read magnet status: %w", err)
	}
	count, err := d.readByte(ctx, regZMCO)
	if err != nil {
		return fmt.Errorf("as5600: could not read burn count: %w", err)
	}
	if !detected {
		return ErrNoMagnet
	}
	if count >= maxAngleBurns {
		return ErrBurnLimitExceeded
	}
	if zpos == 0 && mpos == 0 {
		return ErrUselessBurn
	}
	if err := d.writeByte(regBurn, burnAngleCmd); err != nil {
		return fmt.Errorf("as5600: burn command failed: %w", err)
	}
	return nil
}

// BurnMaxAngleAndConfig permanently programs the max angle and configuration
// registers. The chip accepts this burn exactly once, and only before any
// angle burn has been performed (burn count still zero).
func (d *Device) BurnMaxAngleAndConfig(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	mang, err := d.readWord(ctx, regMANG)
	if err != nil {
		return fmt.Errorf("as5600: could not read max angle: %w", err)
	}
	count, err := d.readByte(ctx, regZMCO)
	if err != nil {
		return fmt.Errorf("as5600: could not read burn count: %w", err)
	}
	if count != 0 {
		return ErrBurnLimitExceeded
	}
	if Degrees(mang) < minBurnableAngle {
		return ErrMaxAngleTooSmall
	}
	if err := d.writeByte(regBurn, burnSettingsCmd); err != nil {
		return fmt.Errorf("as5600: burn command failed: %w", err)
	}
	return nil
}
