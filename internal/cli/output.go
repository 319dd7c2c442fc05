package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/solir/internal/diag"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The input was read but is unusable (IR error, compiler errors, incomplete index)
	ExitCommandError = 2 // Command error (invalid paths, database not found, bad config)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeConfig         = "E002" // Config file unreadable or invalid
	ErrCodeCompilerOutput = "E003" // Standard-JSON output unreadable or missing sources
	ErrCodeCompilerErrors = "E004" // Compiler reported errors
	ErrCodeNotFound       = "E005" // Contract, file or unit not found
	ErrCodeStore          = "E006" // Index database error
	ErrCodeIR             = "E100" // IR construction or resolution error; details carry the diag code
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	// Session is attached to JSON responses for log correlation.
	Session string
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`            // "ok" or "error"
	Data    any       `json:"data,omitempty"`    // success payload
	Error   *CLIError `json:"error,omitempty"`   // error details
	Session string    `json:"session,omitempty"` // session ID of the run
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. In text
// mode data is printed with its String method when it has one.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			Session: f.Session,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			Session: f.Session,
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// IR errors carry their diag fields as details.
func (f *OutputFormatter) Fail(exit int, code, message string, err error) error {
	var details any
	var ie *diag.Error
	if errors.As(err, &ie) {
		code = ErrCodeIR
		details = irErrorDetails(ie)
	}
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := f.Error(code, text, details); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}

// IRErrorDetails is the JSON form of a diag.Error.
type IRErrorDetails struct {
	Kind   diag.Code `json:"kind"`
	File   string    `json:"file,omitempty"`
	Start  int       `json:"start,omitempty"`
	End    int       `json:"end,omitempty"`
	NodeID *int64    `json:"node_id,omitempty"`
	Node   string    `json:"node,omitempty"`
}

func irErrorDetails(e *diag.Error) IRErrorDetails {
	d := IRErrorDetails{Kind: e.Code, File: e.File, Start: e.Start, End: e.End, Node: e.Kind}
	if e.NodeID != diag.NoID {
		id := e.NodeID
		d.NodeID = &id
	}
	return d
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
