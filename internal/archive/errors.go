package archive

import "errors"

var (
	ErrInvalidArchive   = errors.New("invalid or corrupted ZIP file")
	ErrClosed           = errors.New("archive is closed")
	ErrNotFound         = errors.New("entry not found in archive")
	ErrPasswordRequired = errors.New("this archive requires a password")
	ErrWrongPassword    = errors.New("wrong password")
	ErrTooLarge         = errors.New("file is too large to view inline")
	ErrUnsafePath       = errors.New("entry path escapes the destination directory")
)
