package flash

import "fmt"

// MemFlash is an in-memory fake Device backed by a byte slice. It
// models bit-program-only semantics: WriteAt ANDs the existing bits
// with the supplied bytes (so a write can only clear bits, never set
// them), and EraseSector fills a sector with 0xFF. This is the fake
// every other package in this module tests against.
//
// Grounded on other_examples/QubicOS-Spark__host_flash.go's hostFlash,
// which implements the identical AND-on-write / fill-on-erase model
// against an on-disk image file.
type MemFlash struct {
	buf        []byte
	sectorSize int
	enabled    int

	// FailVerifyAt, when >= 0, causes WriteAt to report ErrVerifyFailed
	// for any write that touches this address, regardless of the
	// verify mode requested. Used to exercise the VALIDATION path.
	FailVerifyAt int
}

// NewMemFlash allocates a fake device of size bytes, partitioned into
// sectors of sectorSize bytes, initialized fully erased (all 0xFF).
func NewMemFlash(size, sectorSize int) *MemFlash {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0xFF
	}
	return &MemFlash{buf: buf, sectorSize: sectorSize, FailVerifyAt: -1}
}

func (m *MemFlash) Size() int { return len(m.buf) }

func (m *MemFlash) Enable() error {
	m.enabled++
	return nil
}

func (m *MemFlash) Disable() error {
	if m.enabled > 0 {
		m.enabled--
	}
	return nil
}

func (m *MemFlash) ReadAt(addr, length int) ([]byte, error) {
	if addr < 0 || length < 0 || addr+length > len(m.buf) {
		return nil, ErrOutOfRange
	}
	out := make([]byte, length)
	copy(out, m.buf[addr:addr+length])
	return out, nil
}

func (m *MemFlash) WriteAt(addr int, data []byte, verify VerifyMode, from, to int) error {
	if addr < 0 || addr+len(data) > len(m.buf) {
		return ErrOutOfRange
	}
	if from < 0 || to > len(data) || from > to {
		return fmt.Errorf("flash: invalid verify range [%d:%d) for %d bytes", from, to, len(data))
	}

	if verify == VerifyPre || verify == VerifyBoth {
		for i, b := range data[from:to] {
			if m.buf[addr+from+i]&b != b {
				return ErrVerifyFailed
			}
		}
	}

	for i, b := range data {
		m.buf[addr+i] &= b
	}

	if m.FailVerifyAt >= 0 && m.FailVerifyAt >= addr && m.FailVerifyAt < addr+len(data) {
		return ErrVerifyFailed
	}

	if verify == VerifyPost || verify == VerifyBoth {
		for i, b := range data[from:to] {
			if m.buf[addr+from+i] != b {
				return ErrVerifyFailed
			}
		}
	}

	return nil
}

func (m *MemFlash) EraseSector(addr int) error {
	if addr < 0 || addr >= len(m.buf) {
		return ErrOutOfRange
	}
	if addr%m.sectorSize != 0 {
		return ErrNotAligned
	}
	end := addr + m.sectorSize
	if end > len(m.buf) {
		return ErrOutOfRange
	}
	for i := addr; i < end; i++ {
		m.buf[i] = 0xFF
	}
	return nil
}
