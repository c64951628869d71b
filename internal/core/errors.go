package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/doccompare/internal/imagediff"
	"github.com/JonMunkholm/doccompare/internal/pdfdiff"
	"github.com/JonMunkholm/doccompare/internal/spreadsheet"
	"github.com/JonMunkholm/doccompare/internal/store"
	"github.com/JonMunkholm/doccompare/internal/tablediff"
	"github.com/JonMunkholm/doccompare/internal/workspace"
)

// Errors returned by Service operations. Errors from the document packages
// are re-exported so callers only need to import core.
var (
	ErrFileNotFound       = workspace.ErrFileNotFound
	ErrInvalidSessionID   = workspace.ErrInvalidSessionID
	ErrSheetNotFound      = spreadsheet.ErrSheetNotFound
	ErrEmptySheet         = spreadsheet.ErrEmptySheet
	ErrUnsupportedSheet   = spreadsheet.ErrUnsupportedFormat
	ErrUnsupportedImage   = imagediff.ErrUnsupportedFormat
	ErrInvalidPDF         = pdfdiff.ErrInvalidPDF
	ErrShape              = tablediff.ErrShape
	ErrComparisonNotFound = store.ErrNotFound

	// ErrFileTooLarge is returned when an input exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrSessionNotFound is returned by CleanSession when no folder exists for the id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMissingPath is returned when a request omits a file path.
	ErrMissingPath = errors.New("no file provided")
)

// InputError names which input of a request failed.
type InputError struct {
	Input string // "file1" or "file2"
	Path  string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Input, e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
