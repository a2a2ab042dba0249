package as5600

import (
	"errors"
	"time"
)

// ErrBusTimeout is returned when the bus did not deliver the requested bytes
// before the configured read timeout elapsed.
var ErrBusTimeout = errors.New("as5600: bus timeout")

// Bus is the two-wire collaborator the driver talks through. Implementations
// behave like a master-mode I2C engine with a buffered receive path: a write
// transaction is framed by BeginTransmission/EndTransmission, a read
// transaction is started with RequestFrom and its bytes are drained through
// Available/Read. The driver owns transaction sequencing; implementations own
// electrical and timing concerns.
type Bus interface {
	// BeginTransmission opens a write transaction to the given 7-bit address.
	BeginTransmission(address byte)
	// Write queues or sends one byte within the open write transaction.
	Write(b byte) error
	// EndTransmission closes the write transaction and flushes it to the wire.
	EndTransmission() error
	// RequestFrom issues a read transaction of count bytes from the given
	// 7-bit address. Received bytes become drainable through Read.
	RequestFrom(address byte, count int) error
	// Available returns the number of received bytes not yet consumed by Read.
	Available() int
	// Read consumes one received byte.
	Read() (byte, error)
	// SetTimeout sets the maximum duration a single bus transaction may take.
	SetTimeout(timeout time.Duration)
}
