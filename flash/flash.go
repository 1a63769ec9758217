// Package flash defines the collaborator interface the rest of this
// module programs against: a raw, byte-addressable, sector-erasable
// medium. Nothing in this package knows about files, pages, or FATs —
// that's the job of the page, fat, and spiffat packages above it.
package flash

// VerifyMode controls whether Device.WriteAt verifies the bytes it
// programs by reading them back.
type VerifyMode byte

const (
	// VerifyNone skips verification entirely.
	VerifyNone VerifyMode = iota
	// VerifyPost reads back after programming and compares.
	VerifyPost
	// VerifyPre reads back before programming and compares (used to
	// confirm the target bits are erased).
	VerifyPre
	// VerifyBoth does both.
	VerifyBoth
)

// Device is the raw flash driver collaborator. Implementations model
// NOR-like media: WriteAt can only flip bits 1->0, and EraseSector is
// the only operation that restores bits to 1.
type Device interface {
	// Size reports the total addressable byte count of the device.
	Size() int

	// Enable powers up / selects the bus. Implementations should be
	// idempotent under the nesting RefCountedDevice applies.
	Enable() error

	// Disable powers down / deselects the bus.
	Disable() error

	// ReadAt returns length bytes starting at addr.
	ReadAt(addr, length int) ([]byte, error)

	// WriteAt programs data at addr. verify controls read-back
	// verification; from/to optionally restrict verification to a
	// sub-range of data (pass 0, len(data) to verify all of it).
	WriteAt(addr int, data []byte, verify VerifyMode, from, to int) error

	// EraseSector restores an entire sector at addr to all-0xFF.
	EraseSector(addr int) error
}

// RefCountedDevice wraps a Device with the nonnegative enable counter
// described in the flash adapter design: nested Enable/Disable scopes
// compose, and the underlying device is only physically enabled on the
// 0->1 transition and disabled on the 1->0 transition.
type RefCountedDevice struct {
	dev     Device
	enabled int
}

// NewRefCounted wraps dev for nested-scope enable/disable.
func NewRefCounted(dev Device) *RefCountedDevice {
	return &RefCountedDevice{dev: dev}
}

func (r *RefCountedDevice) Enable() error {
	r.enabled++
	if r.enabled == 1 {
		return r.dev.Enable()
	}
	return nil
}

func (r *RefCountedDevice) Disable() error {
	if r.enabled == 0 {
		return nil
	}
	r.enabled--
	if r.enabled == 0 {
		return r.dev.Disable()
	}
	return nil
}

func (r *RefCountedDevice) Size() int { return r.dev.Size() }

func (r *RefCountedDevice) ReadAt(addr, length int) ([]byte, error) {
	if err := r.Enable(); err != nil {
		return nil, err
	}
	defer r.Disable()
	return r.dev.ReadAt(addr, length)
}

func (r *RefCountedDevice) WriteAt(addr int, data []byte, verify VerifyMode, from, to int) error {
	if err := r.Enable(); err != nil {
		return err
	}
	defer r.Disable()
	return r.dev.WriteAt(addr, data, verify, from, to)
}

func (r *RefCountedDevice) EraseSector(addr int) error {
	if err := r.Enable(); err != nil {
		return err
	}
	defer r.Disable()
	return r.dev.EraseSector(addr)
}
