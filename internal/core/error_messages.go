package core

// error_messages.go maps technical errors to messages people can act on.
//
// Each message carries a code that support can look up:
//
//	FILE001 file too large         FILE002 invalid csv/xlsx
//	FILE003 encoding error         FILE004 no file provided
//	FILE005 empty file
//	UPL001  upload cancelled       UPL002  too many uploads
//	UPL003  invalid upload form
//	UPL004  context canceled       UPL005  context deadline exceeded
//	EXP001  no payroll result      EXP002  unsupported format
//	RULE001 invalid override rule
//	RATE001 rate limit
//	ERR000  anything else
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a smaller date range and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Export a smaller date range and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Upload the payroll export as comma-separated values with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the file as .xlsx or export it as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a payroll CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row and data rows",
			Code:    "FILE005",
		},
	},

	// Upload errors
	{
		pattern: "upload cancelled",
		msg: UserMessage{
			Message: "Upload was cancelled",
			Action:  "Start a new upload when ready",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "invalid upload form",
		msg: UserMessage{
			Message: "The upload request could not be read",
			Action:  "Use the upload form and attach a single file",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Export errors
	{
		pattern: "no payroll result",
		msg: UserMessage{
			Message: "There is nothing to download yet",
			Action:  "Upload a payroll CSV first",
			Code:    "EXP001",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "Export format is not supported",
			Action:  "Choose csv or xlsx",
			Code:    "EXP002",
		},
	},

	// Rules
	{
		pattern: "invalid override rule",
		msg: UserMessage{
			Message: "An override rule is misconfigured",
			Action:  "Check match, pattern and field in the rules file",
			Code:    "RULE001",
		},
	},

	// Rate limiting
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
// Unknown errors map to ERR000.
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

// FormatUserError renders "Message (Code: XXX). Action" for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
