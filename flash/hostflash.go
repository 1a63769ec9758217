package flash

import (
	"os"
)

// HostFlash is a file-backed Device implementation used by the CLI
// to persist a flash image across process invocations. It applies the same bit-program-only semantics as
// MemFlash, but against an *os.File instead of a byte slice.
//
// Grounded on other_examples/QubicOS-Spark__host_flash.go's hostFlash,
// which backs the same model with an on-disk image file gated by a
// SPARK_FLASH_PATH-style environment variable.
type HostFlash struct {
	f          *os.File
	size       int
	sectorSize int
	enabled    int
}

// OpenHostFlash opens (creating if necessary) a file-backed flash
// image at path, sized to size bytes. If the file already exists and
// is the right size, its contents are kept; otherwise it is truncated
// and filled with 0xFF (fully erased).
func OpenHostFlash(path string, size, sectorSize int) (*HostFlash, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	hf := &HostFlash{f: f, size: size, sectorSize: sectorSize}

	if st.Size() != int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}
		blank := make([]byte, sectorSize)
		for i := range blank {
			blank[i] = 0xFF
		}
		for off := 0; off < size; off += sectorSize {
			if _, err := f.WriteAt(blank, int64(off)); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return hf, nil
}

func (h *HostFlash) Close() error { return h.f.Close() }

func (h *HostFlash) Size() int { return h.size }

func (h *HostFlash) Enable() error {
	h.enabled++
	return nil
}

func (h *HostFlash) Disable() error {
	if h.enabled > 0 {
		h.enabled--
	}
	return nil
}

func (h *HostFlash) ReadAt(addr, length int) ([]byte, error) {
	if addr < 0 || length < 0 || addr+length > h.size {
		return nil, ErrOutOfRange
	}
	buf := make([]byte, length)
	_, err := h.f.ReadAt(buf, int64(addr))
	return buf, err
}

func (h *HostFlash) WriteAt(addr int, data []byte, verify VerifyMode, from, to int) error {
	if addr < 0 || addr+len(data) > h.size {
		return ErrOutOfRange
	}

	existing := make([]byte, len(data))
	if _, err := h.f.ReadAt(existing, int64(addr)); err != nil {
		return err
	}

	if verify == VerifyPre || verify == VerifyBoth {
		for i, b := range data[from:to] {
			if existing[from+i]&b != b {
				return ErrVerifyFailed
			}
		}
	}

	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = existing[i] & b
	}

	if _, err := h.f.WriteAt(out, int64(addr)); err != nil {
		return err
	}

	if verify == VerifyPost || verify == VerifyBoth {
		for i, b := range data[from:to] {
			if out[from+i] != b {
				return ErrVerifyFailed
			}
		}
	}

	return nil
}

func (h *HostFlash) EraseSector(addr int) error {
	if addr < 0 || addr >= h.size {
		return ErrOutOfRange
	}
	if addr%h.sectorSize != 0 {
		return ErrNotAligned
	}
	blank := make([]byte, h.sectorSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	_, err := h.f.WriteAt(blank, int64(addr))
	return err
}
