package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/as5600"
)

var _ as5600.Bus = (*MCP2221)(nil)

func TestReceiveBuffer(t *testing.T) {
	d := NewMCP2221()
	assert.Equal(t, 0, d.Available())
	_, err := d.Read()
	assert.ErrorIs(t, err, ErrReadUnderflow)

	d.rx = append(d.rx, 0x0C, 0xB0)
	assert.Equal(t, 2, d.Available())
	b, err := d.Read()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x0C), b)
	assert.Equal(t, 1, d.Available())
}

func TestSetTimeoutIsNoop(t *testing.T) {
	d := NewMCP2221()
	d.SetTimeout(time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, d.responseWait)
}
