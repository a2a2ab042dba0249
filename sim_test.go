package as5600

import (
	"fmt"
	"time"
)

// simBus is a Bus backed by an in-memory register file. It keeps a
// transaction log so tests can assert how values travelled over the wire, and
// it records burn commands instead of mutating anything.
type simBus struct {
	regs   map[byte]byte
	txAddr byte
	tx     []byte
	rx     []byte
	ptr    byte
	burns  []byte
	log    []string
}

func newSimBus() *simBus {
	return &simBus{regs: make(map[byte]byte)}
}

func (b *simBus) setWord(reg byte, value uint16) {
	b.regs[reg] = byte(value >> 8)
	b.regs[reg+1] = byte(value)
}

func (b *simBus) word(reg byte) uint16 {
	return uint16(b.regs[reg])<<8 | uint16(b.regs[reg+1])
}

func (b *simBus) BeginTransmission(address byte) {
	b.txAddr = address
	b.tx = b.tx[:0]
}

func (b *simBus) Write(by byte) error {
	b.tx = append(b.tx, by)
	return nil
}

func (b *simBus) EndTransmission() error {
	switch len(b.tx) {
	case 1:
		b.ptr = b.tx[0]
		b.log = append(b.log, fmt.Sprintf("select 0x%02x", b.tx[0]))
	case 2:
		if b.tx[0] == regBurn {
			b.burns = append(b.burns, b.tx[1])
		} else {
			b.regs[b.tx[0]] = b.tx[1]
		}
		b.log = append(b.log, fmt.Sprintf("write 0x%02x", b.tx[0]))
	default:
		return fmt.Errorf("unexpected transaction of %d bytes", len(b.tx))
	}
	return nil
}

func (b *simBus) RequestFrom(address byte, count int) error {
	for i := 0; i < count; i++ {
		b.rx = append(b.rx, b.regs[b.ptr+byte(i)])
	}
	b.log = append(b.log, fmt.Sprintf("read%d 0x%02x", count, b.ptr))
	return nil
}

func (b *simBus) Available() int {
	return len(b.rx)
}

func (b *simBus) Read() (byte, error) {
	if len(b.rx) == 0 {
		return 0, fmt.Errorf("read underflow")
	}
	by := b.rx[0]
	b.rx = b.rx[1:]
	return by, nil
}

func (b *simBus) SetTimeout(timeout time.Duration) {}
