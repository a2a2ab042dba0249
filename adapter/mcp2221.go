// Package adapter exposes the Microchip MCP2221 USB-to-I2C bridge as a bus
// for the as5600 driver.
package adapter

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

// HID command codes of the MCP2221 I2C engine.
const (
	cmdStatus    byte = 0x10
	cmdReadData  byte = 0x40
	cmdWriteData byte = 0x90
	cmdReadReq   byte = 0x91
)

var ErrDeviceNotFound = errors.New("adapter: MCP2221 device not found")
var ErrEngineBusy = errors.New("adapter: I2C engine is busy (command not completed)")
var ErrReadUnderflow = errors.New("adapter: read past available data")

// MCP2221 implements the as5600 Bus contract over the bridge's HID report
// protocol. Write bytes are buffered between BeginTransmission and
// EndTransmission and flushed as one I2C write; RequestFrom runs a read
// command followed by a data fetch.
type MCP2221 struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration

	txAddr byte
	tx     []byte
	rx     []byte
}

func NewMCP2221() *MCP2221 {
	return &MCP2221{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 50 * time.Millisecond,
	}
}

func (d *MCP2221) BeginTransmission(address byte) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.txAddr = address
	d.tx = d.tx[:0]
}

func (d *MCP2221) Write(b byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.tx = append(d.tx, b)
	return nil
}

func (d *MCP2221) EndTransmission() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdWriteData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(d.tx)))
	d.request[3] = d.txAddr << 1
	copy(d.request[4:], d.tx)
	if err := d.send(); err != nil {
		return fmt.Errorf("adapter: write to %#x failed: %w", d.txAddr, err)
	}
	if d.response[1] == 0x01 {
		return ErrEngineBusy
	}
	return nil
}

func (d *MCP2221) RequestFrom(address byte, count int) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdReadReq
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(count))
	d.request[3] = address<<1 + 1
	if err := d.send(); err != nil {
		return fmt.Errorf("adapter: bus read from %#x failed: %w", address, err)
	}
	d.request[0] = cmdReadData
	resetBuffer(d.response)
	if err := d.send(); err != nil {
		return fmt.Errorf("adapter: could not get read data: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("adapter: error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == 127 || int(d.response[3]) != count {
		return fmt.Errorf("adapter: invalid data size byte; expected %d, got %d", count, d.response[3])
	}
	d.rx = append(d.rx, d.response[4:4+count]...)
	return nil
}

func (d *MCP2221) Available() int {
	d.mx.Lock()
	defer d.mx.Unlock()
	return len(d.rx)
}

func (d *MCP2221) Read() (byte, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if len(d.rx) == 0 {
		return 0, ErrReadUnderflow
	}
	b := d.rx[0]
	d.rx = d.rx[1:]
	return b, nil
}

// SetTimeout is a no-op: transfer timing is bounded by the bridge's report
// protocol, with a fixed settle period per HID exchange.
func (d *MCP2221) SetTimeout(timeout time.Duration) {}

// Release cancels any pending transfer and frees the bridge's I2C engine.
func (d *MCP2221) Release() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	d.request[2] = 0x10
	if err := d.send(); err != nil {
		return fmt.Errorf("adapter: release request failed: %w", err)
	}
	return nil
}

// Status describes the bridge's I2C engine state.
type Status struct {
	DataBufferCounter      int
	SpeedDivider           int
	Timeout                int
	CurrentAddress         string
	LastWriteRequestedSize uint16
	LastWriteSentSize      uint16
	ReadPending            int
}

func (d *MCP2221) Status() (*Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	if err := d.send(); err != nil {
		return nil, fmt.Errorf("adapter: status request failed: %w", err)
	}
	status := &Status{
		DataBufferCounter: int(d.response[13]),
		SpeedDivider:      int(d.response[14]),
		Timeout:           int(d.response[15]),
		ReadPending:       int(d.response[25]),
		CurrentAddress:    hex.EncodeToString(d.response[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(d.response[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(d.response[11:13])
	return status, nil
}

// send pushes the 64-byte request report to the bridge and reads the
// response report after a fixed settle period.
func (d *MCP2221) send() error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return ErrDeviceNotFound
	}
	if len(devs) > 1 {
		return fmt.Errorf("adapter: ambiguous device identification")
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("adapter: error opening device: %w", err)
	}
	defer func() { _ = dev.Close() }()
	slog.Debug("sending report to adapter", "report", hex.EncodeToString(d.request))
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("adapter: could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("adapter: short write: %d", n)
	}
	time.Sleep(d.responseWait)
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("adapter: could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("adapter: short read: %d", n)
	}
	slog.Debug("read report from adapter", "report", hex.EncodeToString(d.response))
	return nil
}

func (d *MCP2221) resetBuffers() {
	resetBuffer(d.request)
	resetBuffer(d.response)
}

func resetBuffer(buf []byte) {
	for i := 0; i < len(buf)-1; i++ {
		buf[i] = 0x00
	}
}
