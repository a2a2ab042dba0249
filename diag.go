package as5600

import "context"

// MagnetStrength classifies the magnetic field seen by the chip.
type MagnetStrength int

const (
	MagnetAbsent MagnetStrength = iota
	MagnetTooWeak
	MagnetNominal
	MagnetTooStrong
)

func (s MagnetStrength) String() string {
	switch s {
	case MagnetTooWeak:
		return "too weak"
	case MagnetNominal:
		return "nominal"
	case MagnetTooStrong:
		return "too strong"
	default:
		return "absent"
	}
}

// DetectMagnet reports whether the MD status bit is set.
func (d *Device) DetectMagnet(ctx context.Context) (bool, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.magnetDetected(ctx)
}

// GetMagnetStrength classifies the field from a single status read. The weak
// and strong overflow bits are only meaningful while a magnet is detected;
// weak takes priority over strong.
func (d *Device) GetMagnetStrength(ctx context.Context) (MagnetStrength, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	status, err := d.readByte(ctx, regStatus)
	if err != nil {
		return MagnetAbsent, err
	}
	switch {
	case status&statusMD == 0:
		return MagnetAbsent, nil
	case status&statusML != 0:
		return MagnetTooWeak, nil
	case status&statusMH != 0:
		return MagnetTooStrong, nil
	default:
		return MagnetNominal, nil
	}
}

// GetAgc returns the automatic gain control value. Mid-range means the magnet
// sits at the optimal distance.
func (d *Device) GetAgc(ctx context.Context) (uint8, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readByte(ctx, regAGC)
}

// GetBurnCount returns the ZMCO register: how many times the angle burn has
// been performed. The counter is hardware-resident and never resets.
func (d *Device) GetBurnCount(ctx context.Context) (uint8, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readByte(ctx, regZMCO)
}

func (d *Device) magnetDetected(ctx context.Context) (bool, error) {
	status, err := d.readByte(ctx, regStatus)
	if err != nil {
		return false, err
	}
	return status&statusMD != 0, nil
}
