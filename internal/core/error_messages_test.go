package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/doccompare/internal/tablediff"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing file",
			err:         fmt.Errorf("file1: %w", ErrFileNotFound),
			wantCode:    "FILE001",
			wantMessage: "Document not found",
		},
		{
			name:        "missing path",
			err:         ErrMissingPath,
			wantCode:    "FILE002",
			wantMessage: "No document was specified",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("%w: 200MB exceeds limit", ErrFileTooLarge),
			wantCode:    "FILE003",
			wantMessage: "Document exceeds the maximum size limit",
		},
		{
			name:        "unsupported image",
			err:         ErrUnsupportedImage,
			wantCode:    "FILE004",
			wantMessage: "Image format is not supported",
		},
		{
			name:        "invalid pdf",
			err:         fmt.Errorf("%w: malformed xref", ErrInvalidPDF),
			wantCode:    "FILE005",
			wantMessage: "Document could not be read as a PDF",
		},
		{
			name:        "sheet not found",
			err:         &InputError{Input: "file2", Path: "b.xlsx", Err: ErrSheetNotFound},
			wantCode:    "SHEET001",
			wantMessage: "Sheet not found in workbook",
		},
		{
			name:        "empty sheet",
			err:         ErrEmptySheet,
			wantCode:    "SHEET002",
			wantMessage: "Sheet is empty",
		},
		{
			name:        "shape error",
			err:         &tablediff.ShapeError{Table: "first", Row: 3, Reason: "row has no cells"},
			wantCode:    "CMP001",
			wantMessage: "Sheet data could not be aligned",
		},
		{
			name:        "limiter full",
			err:         ErrTooManyComparisons,
			wantCode:    "CMP002",
			wantMessage: "System is busy processing other comparisons",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "CMP005",
			wantMessage: "Comparison timed out",
		},
		{
			name:        "session not found",
			err:         ErrSessionNotFound,
			wantCode:    "SES002",
			wantMessage: "Session not available for cleanup",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("SHEET NOT FOUND: Totals"),
			wantCode:    "SHEET001",
			wantMessage: "Sheet not found in workbook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptySheet)

	expected := "Sheet is empty (Code: SHEET002). Choose a sheet that contains data"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrFileNotFound,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("read workbook: %w", ErrSheetNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Sheet not found in workbook" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrSheetNotFound) {
			t.Error("Unwrap() should return original error")
		}
	})
}
