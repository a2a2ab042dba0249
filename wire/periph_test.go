package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/physic"
)

// fakeI2C records Tx calls and plays back queued read data.
type fakeI2C struct {
	addrs  []uint16
	writes [][]byte
	reads  [][]byte
	closed bool
}

func (f *fakeI2C) String() string { return "fake" }

func (f *fakeI2C) SetSpeed(freq physic.Frequency) error { return nil }

func (f *fakeI2C) Close() error {
	f.closed = true
	return nil
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.addrs = append(f.addrs, addr)
	if w != nil {
		f.writes = append(f.writes, append([]byte(nil), w...))
	}
	if r != nil {
		copy(r, f.reads[0])
		f.reads = f.reads[1:]
	}
	return nil
}

func TestPeriph_WriteTransaction(t *testing.T) {
	fake := &fakeI2C{}
	bus := &Periph{bus: fake}

	bus.BeginTransmission(0x36)
	assert.NoError(t, bus.Write(0x07))
	assert.NoError(t, bus.Write(0x20))
	assert.NoError(t, bus.EndTransmission())

	assert.Equal(t, [][]byte{{0x07, 0x20}}, fake.writes)
	assert.Equal(t, []uint16{0x36}, fake.addrs)
}

func TestPeriph_ReadTransaction(t *testing.T) {
	fake := &fakeI2C{reads: [][]byte{{0x0C, 0xB0}}}
	bus := &Periph{bus: fake}

	assert.NoError(t, bus.RequestFrom(0x36, 2))
	assert.Equal(t, 2, bus.Available())
	high, err := bus.Read()
	assert.NoError(t, err)
	low, err := bus.Read()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x0C), high)
	assert.Equal(t, byte(0xB0), low)
	assert.Equal(t, 0, bus.Available())

	_, err = bus.Read()
	assert.ErrorIs(t, err, ErrReadUnderflow)
}

func TestPeriph_Close(t *testing.T) {
	fake := &fakeI2C{}
	bus := &Periph{bus: fake}
	assert.NoError(t, bus.Close())
	assert.True(t, fake.closed)
}
