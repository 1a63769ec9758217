package spiffat

// File is a per-open handle into a FileSystem (component C6): mode,
// read cursor, and dirty/closed flags. It keeps no write cursor:
// writes always append at the file's end as recorded in the FAT. The
// zero value is not usable; obtain one from FileSystem.Open.
type File struct {
	fs   *FileSystem
	id   uint16
	idx  int
	name string
	mode string

	rPos   int
	dirty  bool
	closed bool
}

// Seek sets the read cursor. Writes always append at the file's
// current end regardless of the read cursor, per spec.md §9's design
// note: seek affects reads only.
func (f *File) Seek(pos int) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return newErr(CodeFileClosed, f.name)
	}
	entry, err := f.fs.fat.Get(f.id)
	size := 0
	if err == nil {
		size = entry.SizeTotal()
	}
	if pos > size {
		return newErr(CodeInvalidParameters, f.name)
	}
	f.rPos = pos
	return nil
}

// Tell returns the current read cursor.
func (f *File) Tell() (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return 0, newErr(CodeFileClosed, f.name)
	}
	return f.rPos, nil
}

// Eof reports whether the read cursor has reached the file's end.
func (f *File) Eof() (bool, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return false, newErr(CodeFileClosed, f.name)
	}
	entry, err := f.fs.fat.Get(f.id)
	if err != nil {
		return true, nil
	}
	return f.rPos >= entry.SizeTotal(), nil
}

// Len returns the file's current logical size.
func (f *File) Len() (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return 0, newErr(CodeFileClosed, f.name)
	}
	entry, err := f.fs.fat.Get(f.id)
	if err != nil {
		return 0, nil
	}
	return entry.SizeTotal(), nil
}

// Created returns the file's creation timestamp.
func (f *File) Created() (uint32, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return 0, newErr(CodeFileClosed, f.name)
	}
	entry, err := f.fs.fat.Get(f.id)
	if err != nil {
		return 0, nil
	}
	return entry.Created, nil
}

// Read returns up to n bytes (or to end of file if n < 0) starting at
// the read cursor, and advances the cursor by the number of bytes
// returned.
func (f *File) Read(n int) ([]byte, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return nil, newErr(CodeFileClosed, f.name)
	}

	length := n
	if n < 0 {
		entry, err := f.fs.fat.Get(f.id)
		if err != nil {
			return []byte{}, nil
		}
		length = entry.SizeTotal() - f.rPos
	}
	if length < 0 {
		length = 0
	}

	out, err := f.fs.readLocked(f.id, f.rPos, length)
	if err != nil {
		return nil, err
	}
	f.rPos += len(out)
	return out, nil
}

// Write accepts string or []byte data; anything else is
// INVALID_WRITE_DATA. Fails FILE_WRITE_R on a read-mode handle.
func (f *File) Write(data any) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return newErr(CodeFileClosed, f.name)
	}
	if f.mode == "r" {
		return newErr(CodeFileWriteR, f.name)
	}

	var buf []byte
	switch v := data.(type) {
	case []byte:
		buf = v
	case string:
		buf = []byte(v)
	default:
		return newErr(CodeInvalidWriteData, f.name)
	}
	if len(buf) == 0 {
		return nil
	}

	if err := f.fs.writeLocked(f.id, f.name, buf); err != nil {
		return err
	}
	f.dirty = true
	return nil
}

// Close commits any pending size finalization and releases the
// handle. Closing twice fails FILE_CLOSED.
func (f *File) Close() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return newErr(CodeFileClosed, f.name)
	}

	if err := f.fs.closeLocked(f.idx, f.id, f.name, f.dirty); err != nil {
		return err
	}
	f.closed = true
	return nil
}
