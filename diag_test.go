package as5600

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMagnet(t *testing.T) {
	tests := []struct {
		name     string
		status   byte
		detected bool
	}{
		{"magnet present", 0b00100000, true},
		{"no magnet", 0b00000000, false},
		{"overflow bits alone do not count", 0b00011000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, bus := newSimDevice()
			bus.regs[regStatus] = tt.status

			detected, err := dev.DetectMagnet(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, tt.detected, detected)
		})
	}
}

func TestGetMagnetStrength(t *testing.T) {
	tests := []struct {
		name     string
		status   byte
		strength MagnetStrength
	}{
		{"nominal", 0b00100000, MagnetNominal},
		{"too weak", 0b00110000, MagnetTooWeak},
		{"too strong", 0b00101000, MagnetTooStrong},
		{"absent", 0b00000000, MagnetAbsent},
		{"absent regardless of overflow bits", 0b00011000, MagnetAbsent},
		{"weak takes priority over strong", 0b00111000, MagnetTooWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, bus := newSimDevice()
			bus.regs[regStatus] = tt.status

			strength, err := dev.GetMagnetStrength(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, tt.strength, strength)
		})
	}
}

func TestMagnetStrengthString(t *testing.T) {
	assert.Equal(t, "absent", MagnetAbsent.String())
	assert.Equal(t, "too weak", MagnetTooWeak.String())
	assert.Equal(t, "nominal", MagnetNominal.String())
	assert.Equal(t, "too strong", MagnetTooStrong.String())
}
