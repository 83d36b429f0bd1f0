// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"errors"
	"fmt"
)

// Run and thread failures. ErrExecution wraps whatever stopped a run, so
// errors.Is also matches the underlying service or tool error.
var (
	ErrAgent            = errors.New("agent error")
	ErrExecution        = fmt.Errorf("%w: execution", ErrAgent)
	ErrThread           = fmt.Errorf("%w: thread", ErrAgent)
	ErrThreadModeLocked = fmt.Errorf("%w: mode already set", ErrThread)
	ErrThreadDeleted    = fmt.Errorf("%w: deleted", ErrThread)
)

// Backend failures, classified by the chat client.
var (
	ErrService        = errors.New("service error")
	ErrContentFilter  = fmt.Errorf("%w: content filter", ErrService)
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)
	ErrAuth           = fmt.Errorf("%w: authentication", ErrService)
	ErrRateLimit      = fmt.Errorf("%w: rate limited", ErrService)
)

// Tool failures. ErrToolArguments means the model's arguments did not match
// the tool's schema; the tool itself never ran.
var (
	ErrTool             = errors.New("tool error")
	ErrToolExecution    = fmt.Errorf("%w: execution", ErrTool)
	ErrToolArguments    = fmt.Errorf("%w: invalid arguments", ErrTool)
	ErrToolRegistration = fmt.Errorf("%w: registration", ErrTool)
)

// ServiceError is the detail of a non-2xx backend reply. Err is one of the
// backend sentinels above.
type ServiceError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	status := fmt.Sprint(e.StatusCode)
	if e.Code != "" {
		status += " (" + e.Code + ")"
	}
	return "service error " + status + ": " + e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ToolError names the tool a failure belongs to.
type ToolError struct {
	ToolName string
	Message  string
	Err      error
}

func (e *ToolError) Error() string { return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message) }

func (e *ToolError) Unwrap() error { return e.Err }
