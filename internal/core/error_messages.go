package core

// # Error Codes Reference
//
// Errors surfaced to operators (log records, HTTP responses, CLI output)
// carry a short code so a report can be traced back to its cause.
//
// # Read Errors (READ001-READ099)
//
//	READ001 - Unreadable source: The file could not be opened or parsed as CSV
//	          Action: Check the path and that the file is a comma-separated table
//	READ002 - Encoding error: The file is neither UTF-8 nor Latin-1
//	          Action: Re-export the file as UTF-8
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Empty table: The table has no data rows
//	         Action: Nothing to clean; the table is skipped
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Missing column: A required column was not found
//	         Action: Add a matching header or extend the column rules
//	SCH002 - Invalid rules: The column rules file could not be loaded
//	         Action: Fix the rules file; `juryclean rules` prints a valid one
//
// # Workbook Errors (WB001-WB099)
//
//	WB001 - Unreadable workbook: The workbook could not be opened
//	        Action: Check that the file is an .xlsx workbook
//	WB002 - No header row: No header row was found near the top of a sheet
//	        Action: Make sure the header is within the first rows of the sheet
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - No file: No CSV was attached to the request
//	UPL002 - File too large: The request exceeds the configured size limit
//	UPL003 - System busy: Too many clean requests in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Nothing cleaned: No input table could be cleaned
//	         Action: Review the log for skipped tables
//
// # Default Error (ERR000)
//
// Fallback when no typed error or pattern matches. Check the logs for the
// technical error.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgReadError = UserMessage{
		Message: "The file could not be read as CSV",
		Action:  "Check the path and that the file is a comma-separated table",
		Code:    "READ001",
	}
	msgEncoding = UserMessage{
		Message: "The file contains invalid characters",
		Action:  "Re-export the file as UTF-8",
		Code:    "READ002",
	}
	msgEmptyTable = UserMessage{
		Message: "The table has no data rows",
		Action:  "Nothing to clean; the table is skipped",
		Code:    "TBL001",
	}
	msgMissingColumn = UserMessage{
		Message: "A required column was not found",
		Action:  "Add a matching header or extend the column rules",
		Code:    "SCH001",
	}
	msgNothingCleaned = UserMessage{
		Message: "No input table could be cleaned",
		Action:  "Review the log for skipped tables",
		Code:    "RUN001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try fewer or smaller files",
		Code:    "UPL005",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages for errors that do not carry a typed error. First match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "encoding error",
		msg:     msgEncoding,
	},
	{
		pattern: "invalid rules",
		msg: UserMessage{
			Message: "The column rules could not be loaded",
			Action:  "Fix the rules file; `juryclean rules` prints a valid one",
			Code:    "SCH002",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Check that the file is an .xlsx workbook",
			Code:    "WB001",
		},
	},
	{
		pattern: "no header row",
		msg: UserMessage{
			Message: "No header row was found",
			Action:  "Make sure the header is within the first rows of the sheet",
			Code:    "WB002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was attached",
			Action:  "Attach one or more CSV files in the \"files\" field",
			Code:    "UPL001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Upload exceeds the maximum size",
			Action:  "Send fewer or smaller files",
			Code:    "UPL002",
		},
	},
	{
		pattern: "too many requests",
		msg: UserMessage{
			Message: "System is busy processing other requests",
			Action:  "Please wait a moment and try again",
			Code:    "UPL003",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors from this package are recognised through wrapping; anything
// else is matched against known error text. If nothing matches, a fallback
// message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		schemaErr *SchemaError
		emptyErr  *EmptyTableError
		readErr   *ReadError
	)
	switch {
	case errors.As(err, &schemaErr):
		return msgMissingColumn
	case errors.As(err, &emptyErr):
		return msgEmptyTable
	case errors.Is(err, ErrNoCleanedTables):
		return msgNothingCleaned
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.As(err, &readErr) {
		return msgReadError
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
