package core

// error_messages.go maps technical errors to user messages with codes for
// support reference. Users can quote the code; support staff look it up here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the upload size limit
//	          Action: Filter the file down or split it before uploading
//	          Patterns: "request body too large", "file too large"
//
//	FILE002 - Invalid file: The file has no data rows or cannot be read
//	          Action: Include a header line and at least one data line
//	          Errors: ingest.ErrMalformedInput
//
//	FILE003 - Unsupported format: Only CSV and Excel files are accepted
//	          Action: Please upload a CSV file
//	          Errors: ingest.ErrUnsupportedFormat
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to upload
//	          Patterns: "no file provided"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid request: The request could not be understood
//	         Action: Check the request body and parameters
//	         Patterns: "invalid request"
//
//	VAL002 - Invalid number: Filter values must be non-negative whole numbers
//	         Action: Choose values from the available options
//	         Errors: facet.ErrInvalidValue
//
//	VAL003 - Sample too large: The requested sample exceeds the size limit
//	         Action: Ask for fewer sample records
//	         Errors: ErrSampleTooLarge
//
//	VAL005 - Column not found: The filter column does not exist
//	         Action: Use one of the dataset's filter columns
//	         Errors: facet.ErrUnknownDimension
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Errors: ErrTooManyUploads
//
//	UPL003 - Session expired: Session not found
//	         Action: The session may have expired. Please reload the page
//	         Errors: ErrSessionNotFound
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Load in progress: Another file is still loading into this session
//	         Action: Wait for the current upload to finish
//	         Errors: ErrLoadInProgress
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Sentinel errors are matched with errors.Is before any pattern, so wrapping
// never changes the code. Patterns are then matched case-insensitively with
// strings.Contains, first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

var errorSentinels = []errorSentinel{
	{
		target: ingest.ErrMalformedInput,
		msg: UserMessage{
			Message: "The file has no data rows",
			Action:  "Include a header line and at least one data line",
			Code:    "FILE002",
		},
	},
	{
		target: ingest.ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Only CSV and Excel files are accepted",
			Action:  "Please upload a CSV file",
			Code:    "FILE003",
		},
	},
	{
		target: facet.ErrInvalidValue,
		msg: UserMessage{
			Message: "Filter values must be non-negative whole numbers",
			Action:  "Choose values from the available options",
			Code:    "VAL002",
		},
	},
	{
		target: ErrSampleTooLarge,
		msg: UserMessage{
			Message: "The requested sample is larger than allowed",
			Action:  "Ask for fewer sample records",
			Code:    "VAL003",
		},
	},
	{
		target: facet.ErrUnknownDimension,
		msg: UserMessage{
			Message: "The filter column does not exist",
			Action:  "Use one of the dataset's filter columns",
			Code:    "VAL005",
		},
	},
	{
		target: ErrTooManyUploads,
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		target: ErrSessionNotFound,
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired. Please reload the page",
			Code:    "UPL003",
		},
	},
	{
		target: ErrLoadInProgress,
		msg: UserMessage{
			Message: "Another file is still loading into this session",
			Action:  "Wait for the current upload to finish",
			Code:    "SES001",
		},
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the upload size limit",
			Action:  "Filter the file down or split it before uploading",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the upload size limit",
			Action:  "Filter the file down or split it before uploading",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Request Errors
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body and parameters",
			Code:    "VAL001",
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

	// =========================================================================
	// Rate Limiting
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

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels win over text patterns; unmatched errors get ERR000.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load: %w", ingest.ErrMalformedInput))
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.target) {
			return es.msg
		}
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
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
