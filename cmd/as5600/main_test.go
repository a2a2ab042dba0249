package main

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/as5600"
	"github.com/mklimuk/as5600/cmd/as5600/console"
)

// regBus is a Bus backed by an in-memory register file, just enough to feed
// the command helpers.
type regBus struct {
	regs map[byte]byte
	tx   []byte
	rx   []byte
	ptr  byte
}

func newRegBus() *regBus {
	return &regBus{regs: make(map[byte]byte)}
}

func (b *regBus) setWord(reg byte, value uint16) {
	b.regs[reg] = byte(value >> 8)
	b.regs[reg+1] = byte(value)
}

func (b *regBus) BeginTransmission(address byte) { b.tx = b.tx[:0] }

func (b *regBus) Write(by byte) error {
	b.tx = append(b.tx, by)
	return nil
}

func (b *regBus) EndTransmission() error {
	switch len(b.tx) {
	case 1:
		b.ptr = b.tx[0]
	case 2:
		b.regs[b.tx[0]] = b.tx[1]
	}
	return nil
}

func (b *regBus) RequestFrom(address byte, count int) error {
	for i := 0; i < count; i++ {
		b.rx = append(b.rx, b.regs[b.ptr+byte(i)])
	}
	return nil
}

func (b *regBus) Available() int { return len(b.rx) }

func (b *regBus) Read() (byte, error) {
	by := b.rx[0]
	b.rx = b.rx[1:]
	return by, nil
}

func (b *regBus) SetTimeout(timeout time.Duration) {}

func TestPrintAngle(t *testing.T) {
	bus := newRegBus()
	bus.setWord(0x0C, 0x0800)
	bus.setWord(0x0E, 0x0123)
	bus.setWord(0x1B, 0x07FF)
	dev := as5600.New(bus)

	var out, errOut bytes.Buffer
	console.SetOutput(&out, &errOut)
	defer console.SetOutput(os.Stdout, os.Stderr)

	require.NoError(t, printAngle(context.Background(), dev))
	assert.Contains(t, out.String(), "2048")
	assert.Contains(t, out.String(), "291")
	assert.Contains(t, out.String(), "2047")
	assert.Empty(t, errOut.String())
}

func TestWatchAngle_StopsOnCancel(t *testing.T) {
	bus := newRegBus()
	dev := as5600.New(bus)

	var out, errOut bytes.Buffer
	console.SetOutput(&out, &errOut)
	defer console.SetOutput(os.Stdout, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan error, 1)
	go func() { done <- watchAngle(ctx, dev, time.Hour) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop on context cancellation")
	}
}

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range newApp().Commands {
		names[cmd.Name] = true
	}
	for _, expected := range []string{"angle", "status", "limits", "conf", "burn", "mcp2221"} {
		assert.True(t, names[expected], "missing command %s", expected)
	}
	sub := make(map[string]bool)
	for _, cmd := range mcp2221Cmd.Subcommands {
		sub[cmd.Name] = true
	}
	assert.True(t, sub["status"])
	assert.True(t, sub["release"])
}
