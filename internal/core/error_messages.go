package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found: A document path does not exist
//	          Patterns: "file not found"
//	FILE002 - No file: A request did not name a document
//	          Patterns: "no file provided"
//	FILE003 - File too large: Document exceeds the configured size limit
//	          Patterns: "file too large"
//	FILE004 - Unsupported format: Document type cannot be compared
//	          Patterns: "unsupported spreadsheet format", "unsupported image format"
//	FILE005 - Invalid PDF: Document could not be parsed as PDF
//	          Patterns: "invalid pdf"
//
// # Sheet Errors (SHEET001-SHEET099)
//
//	SHEET001 - Sheet not found: Requested sheet is not in the workbook
//	           Patterns: "sheet not found"
//	SHEET002 - Empty sheet: Requested sheet has no cells
//	           Patterns: "sheet is empty"
//
// # Comparison Errors (CMP001-CMP099)
//
//	CMP001 - Malformed table: A sheet could not be aligned
//	         Patterns: "malformed"
//	CMP002 - System busy: Too many comparisons in progress
//	         Patterns: "too many concurrent comparisons"
//	CMP003 - Empty image: An image has no pixels
//	         Patterns: "image has no pixels"
//	CMP004 - Request cancelled
//	         Patterns: "context canceled"
//	CMP005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Invalid session id
//	         Patterns: "invalid session id"
//	SES002 - Session not found: Nothing to clean up
//	         Patterns: "session not found"
//	SES003 - Comparison not found: No archived result for the id
//	         Patterns: "comparison not found"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: Body is not valid JSON
//	         Patterns: "invalid request body"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "Document not found",
			Action:  "Check that the file path is correct and accessible to the server",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No document was specified",
			Action:  "Provide both file1_path and file2_path",
			Code:    "FILE002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Document exceeds the maximum size limit",
			Action:  "Compare a smaller document",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported spreadsheet format",
		msg: UserMessage{
			Message: "Spreadsheet format is not supported",
			Action:  "Save the workbook as .xlsx or .csv",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unsupported image format",
		msg: UserMessage{
			Message: "Image format is not supported",
			Action:  "Use PNG, JPEG, GIF, BMP, TIFF or WebP images",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid pdf",
		msg: UserMessage{
			Message: "Document could not be read as a PDF",
			Action:  "Check that the file is a valid, unencrypted PDF",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Sheet Errors (SHEET001-SHEET002)
	// =========================================================================
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: "Sheet not found in workbook",
			Action:  "Check the sheet name; use excel_properties to list sheets",
			Code:    "SHEET001",
		},
	},
	{
		pattern: "sheet is empty",
		msg: UserMessage{
			Message: "Sheet is empty",
			Action:  "Choose a sheet that contains data",
			Code:    "SHEET002",
		},
	},

	// =========================================================================
	// Comparison Errors (CMP001-CMP005)
	// =========================================================================
	{
		pattern: "malformed",
		msg: UserMessage{
			Message: "Sheet data could not be aligned",
			Action:  "Check the workbook for corrupted rows",
			Code:    "CMP001",
		},
	},
	{
		pattern: "too many concurrent comparisons",
		msg: UserMessage{
			Message: "System is busy processing other comparisons",
			Action:  "Please wait a moment and try again",
			Code:    "CMP002",
		},
	},
	{
		pattern: "image has no pixels",
		msg: UserMessage{
			Message: "Image is empty",
			Action:  "Choose an image with content",
			Code:    "CMP003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "CMP004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Comparison timed out",
			Action:  "Try smaller documents or try again later",
			Code:    "CMP005",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES003)
	// =========================================================================
	{
		pattern: "invalid session id",
		msg: UserMessage{
			Message: "Session id is not valid",
			Action:  "Use an id without path separators",
			Code:    "SES001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Session not available for cleanup",
			Action:  "The session may have expired or already been removed",
			Code:    "SES002",
		},
	},
	{
		pattern: "comparison not found",
		msg: UserMessage{
			Message: "No archived comparison for this session",
			Action:  "Run the comparison again",
			Code:    "SES003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001)
	// =========================================================================
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Request could not be read",
			Action:  "Send a JSON object with the documented fields",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("read: %w", spreadsheet.ErrSheetNotFound)
//	msg := MapError(err)
//	// msg.Code == "SHEET001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user-facing message.
// Error() returns the user message; Unwrap() returns the original error.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError wraps err with its mapped user message. It returns nil for a
// nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
