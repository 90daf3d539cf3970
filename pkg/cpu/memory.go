package cpu

const (
	MemorySize   = 4096
	ProgramStart = 0x200

	// MaxImageSize is the largest program image that fits above ProgramStart.
	MaxImageSize = MemorySize - ProgramStart

	// GlyphSize is the number of bytes per built-in hexadecimal glyph.
	GlyphSize = 5
)

// fontset holds the sixteen 4x5 hexadecimal glyphs stored at address 0.
var fontset = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat emulated address space. Every accessor is bounds
// checked; nothing outside [0, MemorySize) is ever touched.
type Memory [MemorySize]byte

// NewMemory returns memory with the glyph font installed at address 0.
func NewMemory() *Memory {
	m := &Memory{}
	copy(m[:], fontset[:])
	return m
}

func (m *Memory) check(addr uint16, n int) error {
	if int(addr)+n > MemorySize {
		return &AddressError{Addr: addr, Len: n}
	}
	return nil
}

func (m *Memory) Read(addr uint16) (byte, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m[addr], nil
}

func (m *Memory) Write(addr uint16, val byte) error {
	if err := m.check(addr, 1); err != nil {
		return err
	}
	m[addr] = val
	return nil
}

// Fetch reads the big-endian instruction word at addr.
func (m *Memory) Fetch(addr uint16) (uint16, error) {
	if err := m.check(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m[addr])<<8 | uint16(m[addr+1]), nil
}

// Slice returns n bytes starting at addr. The result aliases memory.
func (m *Memory) Slice(addr uint16, n int) ([]byte, error) {
	if err := m.check(addr, n); err != nil {
		return nil, err
	}
	return m[addr : int(addr)+n], nil
}

// Load copies a program image verbatim to ProgramStart.
func (m *Memory) Load(image []byte) error {
	if len(image) > MaxImageSize {
		return ErrImageTooLarge
	}
	copy(m[ProgramStart:], image)
	return nil
}
