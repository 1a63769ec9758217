package spiffat

import "github.com/flashkeep/spiffat/page"

// validateName enforces the nonempty, ≤MaxNameLen constraint on
// filenames, independent of mode.
func validateName(name string) error {
	if len(name) < 1 || len(name) > page.MaxNameLen {
		return newErr(CodeInvalidFilename, name)
	}
	return nil
}

// Open validates name and mode, resolves or mints the backing file id,
// and returns a File handle bound to it. Only "r" and "w" are legal
// modes; there is no append mode.
func (fs *FileSystem) Open(name string, mode string) (*File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := validateName(name); err != nil {
		return nil, err
	}
	if mode != "r" && mode != "w" {
		return nil, newErr(CodeUnknownMode, mode)
	}

	exists := fs.fat.FileExists(name)
	switch mode {
	case "r":
		if !exists {
			return nil, newErr(CodeFileNotFound, name)
		}
	case "w":
		if exists {
			return nil, newErr(CodeFileExists, name)
		}
	}

	id, err := fs.fat.GetFileID(name, fs.clock.Now())
	if err != nil {
		return nil, wrapErr(CodeValidation, "mint file id failed", err)
	}

	idx := fs.nextHandle
	fs.nextHandle++
	fs.handles[idx] = &openHandle{id: id, name: name}

	return &File{
		fs:   fs,
		id:   id,
		idx:  idx,
		name: name,
		mode: mode,
	}, nil
}
