package engine

import (
	"errors"
	"fmt"
)

// Process exit codes
const (
	ExitCodeSuccess  = 0
	ExitCodeFailure  = 1
	ExitCodeUsage    = 2
	ExitCodePassword = 3
)

// Diagnostics printed on stderr
const (
	MessagePasswordRequired  = "PDF is password protected!"
	MessagePasswordIncorrect = "Passed PDF password is incorrect!"
	MessageNoFileName        = "Passed PDF file path should have file name!"
	MessageFileNameNotText   = "Passed PDF file path can not be converted to a string!"
)

var (
	// ErrImage is returned when a rendered page can't be turned into a PNG file
	ErrImage = errors.New("image error")
	// ErrNoFileName is returned when no output prefix can be taken from the PDF path
	ErrNoFileName = errors.New("pdf path has no file name")
	// ErrFileNameNotText is returned when the PDF file name is not valid UTF-8
	ErrFileNameNotText = errors.New("pdf file name is not valid utf-8")
)

// ExitCodeError carries the exit code the process should end with.
// Message, when set, replaces the wrapped error in the diagnostic.
type ExitCodeError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitCodeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitStatus is not named ExitCode so urfave/cli leaves exiting to main
func (e *ExitCodeError) ExitStatus() int {
	return e.Code
}

func fatal(err error) error {
	return &ExitCodeError{Code: ExitCodeFailure, Err: err}
}

// passwordError builds the exit 3 error, worded by whether a password was passed
func passwordError(password *string, err error) error {
	message := MessagePasswordRequired
	if password != nil {
		message = MessagePasswordIncorrect
	}
	return &ExitCodeError{Code: ExitCodePassword, Message: message, Err: err}
}

// prefixError builds the exit 1 error for a PDF path no prefix can be taken from
func prefixError(err error) error {
	message := ""
	switch {
	case errors.Is(err, ErrNoFileName):
		message = MessageNoFileName
	case errors.Is(err, ErrFileNameNotText):
		message = MessageFileNameNotText
	}
	return &ExitCodeError{Code: ExitCodeFailure, Message: message, Err: err}
}
