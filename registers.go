package as5600

// Register address map. Word registers occupy two consecutive addresses with
// the high byte at the lower address.
const (
	regZMCO      byte = 0x00 // burn count, read-only
	regZPOS      byte = 0x01 // start position (word)
	regMPOS      byte = 0x03 // end position (word)
	regMANG      byte = 0x05 // max angle (word)
	regCONF      byte = 0x07 // configuration (word)
	regStatus    byte = 0x0B
	regRawAngle  byte = 0x0C // word, suppressed auto-increment
	regAngle     byte = 0x0E // word, suppressed auto-increment
	regAGC       byte = 0x1A
	regMagnitude byte = 0x1B // word, suppressed auto-increment
	regBurn      byte = 0xFF // write-only command register
)

// Burn command values written to regBurn.
const (
	burnAngleCmd    byte = 0x80
	burnSettingsCmd byte = 0x40
)

// Status register bits: 0 0 MD ML MH 0 0 0
const (
	statusMD byte = 0x20 // magnet detected
	statusML byte = 0x10 // AGC maximum overflow, magnet too weak
	statusMH byte = 0x08 // AGC minimum overflow, magnet too strong
)

// Output stage selection bits 5:4 of the low configuration byte.
const confOutputMask byte = 0b00110000

type readStrategy int

const (
	// readSplit reads the two halves of a word register in independent
	// one-byte transactions, as the datasheet mandates for configuration and
	// limit registers.
	readSplit readStrategy = iota
	// readAtomic reads both bytes in a single unbroken transaction. The chip
	// suppresses the address pointer auto-increment for the angle and
	// magnitude registers so they stay re-readable, but within one read
	// transaction started at the high byte the pointer does advance; the
	// datasheet text contradicts itself here, the behavior below is the
	// empirically verified one. Atomic reads also prevent torn values while
	// the magnet is moving.
	readAtomic
)

// wordStrategy pins the read strategy per word register. Picking the wrong
// strategy silently breaks the auto-increment contract, so the policy is an
// explicit table rather than something inferred per call.
var wordStrategy = map[byte]readStrategy{
	regMANG:      readSplit,
	regZPOS:      readSplit,
	regMPOS:      readSplit,
	regCONF:      readSplit,
	regRawAngle:  readAtomic,
	regAngle:     readAtomic,
	regMagnitude: readAtomic,
}
