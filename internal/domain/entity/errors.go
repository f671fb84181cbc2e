package entity

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeParseFailure   ErrorCode = "PARSE_FAILURE"
	CodeInvalidCommand ErrorCode = "INVALID_COMMAND"
	CodeTargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	CodePolicyBlocked  ErrorCode = "POLICY_BLOCKED"
	CodeOracleDecode   ErrorCode = "ORACLE_DECODE_FAILURE"
	CodeExecution      ErrorCode = "EXECUTION_FAILURE"
	CodeCancelled      ErrorCode = "CANCELLED"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command")
	ErrTargetNotFound = errors.New("target not found")
	ErrPolicyBlocked  = errors.New("blocked by policy")
	ErrOracleDecode   = errors.New("oracle response could not be decoded")
	ErrExecution      = errors.New("execution failed")
	ErrUnsupported    = errors.New("not supported by this backend")
)

// OCRInitError reports that the text extraction engine could not be started.
type OCRInitError struct {
	Engine string
	Err    error
}

func (e *OCRInitError) Error() string {
	return fmt.Sprintf("ocr engine %q failed to initialize: %v", e.Engine, e.Err)
}

func (e *OCRInitError) Unwrap() error {
	return e.Err
}
