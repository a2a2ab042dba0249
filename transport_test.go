package as5600

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBus is a mock implementation of Bus using testify/mock. It asserts the
// exact transaction shape the transport puts on the wire.
type MockBus struct {
	mock.Mock
}

func (m *MockBus) BeginTransmission(address byte) {
	m.Called(address)
}

func (m *MockBus) Write(b byte) error {
	return m.Called(b).Error(0)
}

func (m *MockBus) EndTransmission() error {
	return m.Called().Error(0)
}

func (m *MockBus) RequestFrom(address byte, count int) error {
	return m.Called(address, count).Error(0)
}

func (m *MockBus) Available() int {
	return m.Called().Int(0)
}

func (m *MockBus) Read() (byte, error) {
	args := m.Called()
	return args.Get(0).(byte), args.Error(1)
}

func (m *MockBus) SetTimeout(timeout time.Duration) {
	m.Called(timeout)
}

func newMockBus() *MockBus {
	bus := new(MockBus)
	bus.On("SetTimeout", mock.Anything).Once()
	return bus
}

func TestReadWordAtomic_SingleTransaction(t *testing.T) {
	bus := newMockBus()
	dev := New(bus)

	bus.On("BeginTransmission", DefaultAddress).Once()
	bus.On("Write", regRawAngle).Return(nil).Once()
	bus.On("EndTransmission").Return(nil).Once()
	bus.On("RequestFrom", DefaultAddress, 2).Return(nil).Once()
	bus.On("Available").Return(2)
	bus.On("Read").Return(byte(0x0C), nil).Once()
	bus.On("Read").Return(byte(0xB0), nil).Once()

	raw, err := dev.GetRawAngle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0CB0), raw)
	bus.AssertExpectations(t)
	bus.AssertNumberOfCalls(t, "RequestFrom", 1)
}

func TestReadWordSplit_TwoTransactions(t *testing.T) {
	bus := newMockBus()
	dev := New(bus)

	bus.On("BeginTransmission", DefaultAddress).Twice()
	bus.On("Write", regMANG).Return(nil).Once()
	bus.On("Write", regMANG+1).Return(nil).Once()
	bus.On("EndTransmission").Return(nil).Twice()
	bus.On("RequestFrom", DefaultAddress, 1).Return(nil).Twice()
	bus.On("Available").Return(1)
	bus.On("Read").Return(byte(0x0F), nil).Once()
	bus.On("Read").Return(byte(0xA0), nil).Once()

	max, err := dev.GetMaxAngle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0FA0), max)
	bus.AssertExpectations(t)
	bus.AssertNumberOfCalls(t, "RequestFrom", 2)
}

func TestWordStrategy_Coverage(t *testing.T) {
	atomic := []byte{regRawAngle, regAngle, regMagnitude}
	split := []byte{regMANG, regZPOS, regMPOS, regCONF}
	for _, reg := range atomic {
		assert.Equal(t, readAtomic, wordStrategy[reg])
	}
	for _, reg := range split {
		assert.Equal(t, readSplit, wordStrategy[reg])
	}
}

func TestReadByte_Timeout(t *testing.T) {
	bus := newMockBus()
	dev := New(bus, WithReadTimeout(20*time.Millisecond))

	bus.On("BeginTransmission", DefaultAddress).Once()
	bus.On("Write", regStatus).Return(nil).Once()
	bus.On("EndTransmission").Return(nil).Once()
	bus.On("RequestFrom", DefaultAddress, 1).Return(nil).Once()
	bus.On("Available").Return(0)

	_, err := dev.DetectMagnet(context.Background())
	assert.ErrorIs(t, err, ErrBusTimeout)
	bus.AssertExpectations(t)
}

func TestReadByte_BusError(t *testing.T) {
	bus := newMockBus()
	dev := New(bus)

	bus.On("BeginTransmission", DefaultAddress).Once()
	bus.On("Write", regAGC).Return(errors.New("no ack")).Once()

	_, err := dev.GetAgc(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not select register")
	bus.AssertExpectations(t)
}

func TestWriteWord_HighThenLow(t *testing.T) {
	bus := newMockBus()
	dev := New(bus, WithSettleDelay(time.Millisecond))

	// write high byte at reg, low byte at reg+1, then split read-back
	bus.On("BeginTransmission", DefaultAddress).Times(4)
	bus.On("Write", regZPOS).Return(nil).Twice()
	bus.On("Write", byte(0x12)).Return(nil).Once()
	bus.On("Write", regZPOS+1).Return(nil).Twice()
	bus.On("Write", byte(0x34)).Return(nil).Once()
	bus.On("EndTransmission").Return(nil).Times(4)
	bus.On("RequestFrom", DefaultAddress, 1).Return(nil).Twice()
	bus.On("Available").Return(1)
	bus.On("Read").Return(byte(0x12), nil).Once()
	bus.On("Read").Return(byte(0x34), nil).Once()

	confirmed, err := dev.SetStartPosition(context.Background(), 0x1234)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), confirmed)
	bus.AssertExpectations(t)
}

func TestWriteWord_ContextCancelledDuringSettle(t *testing.T) {
	bus := newMockBus()
	dev := New(bus, WithSettleDelay(50*time.Millisecond))

	bus.On("BeginTransmission", DefaultAddress).Once()
	bus.On("Write", regCONF).Return(nil).Once()
	bus.On("Write", byte(0x00)).Return(nil).Once()
	bus.On("EndTransmission").Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := dev.SetConf(ctx, 0x0020)
	assert.ErrorIs(t, err, context.Canceled)
	bus.AssertExpectations(t)
}
