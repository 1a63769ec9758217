package spiffat

import "fmt"

// Code is one of the stable error identifiers from spec.md §6.
// Callers are expected to match on Code (via errors.Is against the
// package-level sentinels below), not on FsError.Error()'s text.
type Code string

const (
	CodeFileOpen               Code = "FILE_OPEN"
	CodeFileClosed             Code = "FILE_CLOSED"
	CodeFileNotFound           Code = "FILE_NOT_FOUND"
	CodeFileExists             Code = "FILE_EXISTS"
	CodeFileWriteR             Code = "FILE_WRITE_R"
	CodeUnknownMode            Code = "UNKNOWN_MODE"
	CodeValidation             Code = "VALIDATION"
	CodeInvalidSPIFlashAddress Code = "INVALID_SPIFLASH_ADDRESS"
	CodeInvalidWriteData       Code = "INVALID_WRITE_DATA"
	CodeNoFreeSpace            Code = "NO_FREE_SPACE"
	CodeInvalidFilename        Code = "INVALID_FILENAME"
	CodeInvalidParameters      Code = "INVALID_PARAMETERS"
)

// FsError is the error type every public operation returns. It
// carries a stable Code plus an optional wrapped Cause for
// errors.As/errors.Is chains (e.g. an underlying flash I/O failure
// behind a VALIDATION error).
type FsError struct {
	Code  Code
	Msg   string
	Cause error
}

func (e *FsError) Error() string {
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *FsError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, spiffat.ErrFileNotFound) work by comparing
// codes rather than pointer identity, since every call site builds a
// fresh *FsError.
func (e *FsError) Is(target error) bool {
	t, ok := target.(*FsError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newErr(code Code, msg string) *FsError {
	return &FsError{Code: code, Msg: msg}
}

func wrapErr(code Code, msg string, cause error) *FsError {
	return &FsError{Code: code, Msg: msg, Cause: cause}
}

// Sentinel errors for errors.Is comparisons. Only Code is compared
// (see FsError.Is), so these can be passed directly to errors.Is
// regardless of a returned error's Msg/Cause.
var (
	ErrFileOpen               = newErr(CodeFileOpen, "")
	ErrFileClosed             = newErr(CodeFileClosed, "")
	ErrFileNotFound           = newErr(CodeFileNotFound, "")
	ErrFileExists             = newErr(CodeFileExists, "")
	ErrFileWriteR             = newErr(CodeFileWriteR, "")
	ErrUnknownMode            = newErr(CodeUnknownMode, "")
	ErrValidation             = newErr(CodeValidation, "")
	ErrInvalidSPIFlashAddress = newErr(CodeInvalidSPIFlashAddress, "")
	ErrInvalidWriteData       = newErr(CodeInvalidWriteData, "")
	ErrNoFreeSpace            = newErr(CodeNoFreeSpace, "")
	ErrInvalidFilename        = newErr(CodeInvalidFilename, "")
	ErrInvalidParameters      = newErr(CodeInvalidParameters, "")
)
