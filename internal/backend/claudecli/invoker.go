// Package claudecli invokes the claude CLI in headless one-shot mode. It is
// the only implementation of the domain.Invoker boundary that talks to a
// real generation backend.
package claudecli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"go.uber.org/zap"
)

const (
	backendName = "claude-cli"

	defaultTimeout   = 300 * time.Second
	defaultStopGrace = 5 * time.Second

	// diagnosticLimit caps how much of a bad stdout ends up in an error
	// message.
	diagnosticLimit = 500
)

// resultEnvelope is the JSON the CLI prints with --output-format json.
type resultEnvelope struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Invoker runs one blocking CLI invocation per call.
type Invoker struct {
	timeout   time.Duration
	stopGrace time.Duration
}

// NewInvoker creates a CLI invoker (DI constructor).
func NewInvoker(cfg *config.BackendConfig) *Invoker {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	stopGrace := defaultStopGrace
	if cfg.StopGraceSeconds > 0 {
		stopGrace = time.Duration(cfg.StopGraceSeconds) * time.Second
	}

	return &Invoker{timeout: timeout, stopGrace: stopGrace}
}

// Name identifies the backend for the health endpoint.
func (i *Invoker) Name() string {
	return backendName
}

// Invoke runs the CLI once and always returns a result: launch failures,
// non-zero exits, bad envelopes and timeouts all come back with IsError set.
func (i *Invoker) Invoke(ctx context.Context, inv domain.Invocation) domain.InvocationResult {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	args := []string{"-p", "--tools", "", "--output-format", "json", "--model", inv.ModelFlag}
	if inv.SystemPrompt != "" {
		args = append(args, "--system-prompt", inv.SystemPrompt)
	}

	cmd := exec.CommandContext(ctx, inv.Exec.Executable, args...)
	cmd.Env = buildEnv(os.Environ(), inv.Exec.ConfigDir)

	// The prompt travels over stdin, never the command line.
	cmd.Stdin = strings.NewReader(inv.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// On timeout, ask the process to stop; WaitDelay force-kills it if the
	// grace window passes without an exit.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = i.stopGrace

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	logger := observability.FromContext(ctx)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Warn("backend invocation timed out",
			zap.Duration("timeout", i.timeout),
			zap.Duration("elapsed", elapsed))
		return errorResult(fmt.Sprintf("backend timed out after %s", i.timeout))
	}

	if runErr != nil {
		diag := diagnostic(stderr.String(), stdout.String(), runErr)
		logger.Warn("backend invocation failed",
			zap.Duration("elapsed", elapsed),
			zap.String("diagnostic", diag))
		return errorResult(diag)
	}

	logger.Info("backend invocation completed", zap.Duration("elapsed", elapsed))

	return parseEnvelope(stdout.Bytes())
}

// diagnostic picks the most useful failure message: captured stderr, else
// captured stdout, else the bare exit status.
func diagnostic(stderr, stdout string, runErr error) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(stdout); msg != "" {
		return msg
	}
	return runErr.Error()
}

func parseEnvelope(stdout []byte) domain.InvocationResult {
	var envelope resultEnvelope
	if err := json.Unmarshal(stdout, &envelope); err != nil {
		return errorResult("invalid backend response: " + truncate(string(stdout), diagnosticLimit))
	}

	if envelope.IsError {
		return errorResult(envelope.Result)
	}

	return domain.InvocationResult{
		Text:         envelope.Result,
		InputTokens:  envelope.Usage.InputTokens,
		OutputTokens: envelope.Usage.OutputTokens,
	}
}

func errorResult(diag string) domain.InvocationResult {
	return domain.InvocationResult{IsError: true, Diagnostic: diag}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
