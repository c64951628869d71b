// Package core provides the business logic for document comparison.
//
// The package holds all domain orchestration independent of any transport.
// It is used by the HTTP handlers in package web and can be driven directly
// from tests.
//
// # Architecture
//
// Every comparison follows the same steps:
//
//  1. Validate inputs: paths are URL-unescaped, must exist (ErrFileNotFound)
//     and must respect the configured size limit.
//  2. Acquire a slot from the [ComparisonLimiter].
//  3. Reset the session folder in the workspace and copy inputs into it.
//  4. Compute the diff (tablediff, imagediff or pdfdiff).
//  5. Render the HTML report into the session folder.
//  6. Archive a summary record and the report in the history store.
//  7. Return the report URL.
//
// # Sessions
//
// A request may carry its own session id. Without one, a random id is
// generated. Re-running a session replaces its folder and its history record.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (missing, size, format)
//   - SHEET001-SHEET002: Workbook sheet errors
//   - CMP001-CMP005: Comparison errors (malformed, busy, timeout)
//   - SES001-SES003: Session errors
//   - RATE001: Rate limiting
package core
