package domain

import "context"

// ExecContext selects where and as whom a backend invocation runs. It is
// captured from the live settings snapshot at dispatch time and never
// re-read mid-request.
type ExecContext struct {
	// Executable is the backend binary to run.
	Executable string

	// ConfigDir selects the credential/config directory the backend reads,
	// empty meaning the backend's own default.
	ConfigDir string
}

// Invocation is one stateless generation call.
type Invocation struct {
	Prompt       string
	SystemPrompt string // empty means absent
	ModelFlag    string
	Exec         ExecContext
}

// InvocationResult is the single outcome value of a backend call. Backend
// faults of every kind (non-zero exit, bad envelope, launch failure,
// timeout) are reported through IsError, never as a Go error.
type InvocationResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	IsError      bool
	Diagnostic   string
}

// Invoker is the only generation boundary the core knows about.
type Invoker interface {
	// Invoke runs one blocking generation call and always returns a result.
	Invoke(ctx context.Context, inv Invocation) InvocationResult

	// Name identifies the backend for the health endpoint.
	Name() string
}
