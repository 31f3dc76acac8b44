package claudecli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/hearth/internal/backend/claudecli"
	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
)

// writeStub writes an executable shell script standing in for the claude CLI.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func newInvoker(timeoutSeconds int) *claudecli.Invoker {
	return claudecli.NewInvoker(&config.BackendConfig{
		TimeoutSeconds:   timeoutSeconds,
		StopGraceSeconds: 1,
	})
}

func invocation(executable string) domain.Invocation {
	return domain.Invocation{
		Prompt:    "hello",
		ModelFlag: "sonnet",
		Exec:      domain.ExecContext{Executable: executable},
	}
}

func TestInvoke_Success(t *testing.T) {
	stub := writeStub(t, `cat >/dev/null
printf '{"type":"result","subtype":"success","is_error":false,"result":"ciao mondo","usage":{"input_tokens":3,"output_tokens":2}}'
`)

	result := newInvoker(30).Invoke(context.Background(), invocation(stub))

	require.False(t, result.IsError)
	require.Equal(t, "ciao mondo", result.Text)
	require.Equal(t, 3, result.InputTokens)
	require.Equal(t, 2, result.OutputTokens)
}

func TestInvoke_PromptTravelsOverStdin(t *testing.T) {
	stub := writeStub(t, `prompt=$(cat)
printf '{"is_error":false,"result":"%s","usage":{"input_tokens":0,"output_tokens":0}}' "$prompt"
`)

	result := newInvoker(30).Invoke(context.Background(), invocation(stub))

	require.False(t, result.IsError)
	require.Equal(t, "hello", result.Text)
}

func TestInvoke_ArgumentShape(t *testing.T) {
	stub := writeStub(t, `cat >/dev/null
printf '{"is_error":false,"result":"%s","usage":{}}' "$*"
`)

	inv := invocation(stub)
	inv.ModelFlag = "opus"
	inv.SystemPrompt = "be brief"

	result := newInvoker(30).Invoke(context.Background(), inv)

	require.False(t, result.IsError)
	require.Contains(t, result.Text, "-p")
	require.Contains(t, result.Text, "--output-format json")
	require.Contains(t, result.Text, "--model opus")
	require.Contains(t, result.Text, "--system-prompt be brief")
}

func TestInvoke_SystemPromptFlagOmittedWhenAbsent(t *testing.T) {
	stub := writeStub(t, `cat >/dev/null
printf '{"is_error":false,"result":"%s","usage":{}}' "$*"
`)

	result := newInvoker(30).Invoke(context.Background(), invocation(stub))

	require.False(t, result.IsError)
	require.NotContains(t, result.Text, "--system-prompt")
}

func TestInvoke_EnvironmentScrubbing(t *testing.T) {
	t.Setenv("CLAUDECODE", "1")
	t.Setenv("CLAUDE_CONFIG_DIR", "/ambient/dir")

	stub := writeStub(t, `cat >/dev/null
printf '{"is_error":false,"result":"%s","usage":{}}' "${CLAUDECODE:-unset}|${CLAUDE_CONFIG_DIR:-unset}"
`)

	t.Run("markers stripped by default", func(t *testing.T) {
		result := newInvoker(30).Invoke(context.Background(), invocation(stub))
		require.False(t, result.IsError)
		require.Equal(t, "unset|unset", result.Text)
	})

	t.Run("config dir from the snapshot wins", func(t *testing.T) {
		inv := invocation(stub)
		inv.Exec.ConfigDir = "/selected/dir"

		result := newInvoker(30).Invoke(context.Background(), inv)
		require.False(t, result.IsError)
		require.Equal(t, "unset|/selected/dir", result.Text)
	})
}

func TestInvoke_FailureDiagnostics(t *testing.T) {
	t.Run("stderr wins", func(t *testing.T) {
		stub := writeStub(t, `cat >/dev/null
echo "boom from stderr" >&2
echo "noise on stdout"
exit 1
`)
		result := newInvoker(30).Invoke(context.Background(), invocation(stub))
		require.True(t, result.IsError)
		require.Equal(t, "boom from stderr", result.Diagnostic)
	})

	t.Run("stdout when stderr is empty", func(t *testing.T) {
		stub := writeStub(t, `cat >/dev/null
echo "only stdout"
exit 1
`)
		result := newInvoker(30).Invoke(context.Background(), invocation(stub))
		require.True(t, result.IsError)
		require.Equal(t, "only stdout", result.Diagnostic)
	})

	t.Run("bare exit status when both are empty", func(t *testing.T) {
		stub := writeStub(t, `cat >/dev/null
exit 3
`)
		result := newInvoker(30).Invoke(context.Background(), invocation(stub))
		require.True(t, result.IsError)
		require.Contains(t, result.Diagnostic, "exit status 3")
	})
}

func TestInvoke_BadEnvelope(t *testing.T) {
	stub := writeStub(t, `cat >/dev/null
printf 'this is not json'
`)

	result := newInvoker(30).Invoke(context.Background(), invocation(stub))

	require.True(t, result.IsError)
	require.Contains(t, result.Diagnostic, "invalid backend response")
	require.Contains(t, result.Diagnostic, "this is not json")
}

func TestInvoke_ErrorEnvelope(t *testing.T) {
	stub := writeStub(t, `cat >/dev/null
printf '{"type":"result","subtype":"error","is_error":true,"result":"quota exhausted","usage":{"input_tokens":0,"output_tokens":0}}'
`)

	result := newInvoker(30).Invoke(context.Background(), invocation(stub))

	require.True(t, result.IsError)
	require.Equal(t, "quota exhausted", result.Diagnostic)
}

func TestInvoke_Timeout(t *testing.T) {
	stub := writeStub(t, `cat >/dev/null
sleep 10
`)

	result := newInvoker(1).Invoke(context.Background(), invocation(stub))

	require.True(t, result.IsError)
	require.Contains(t, result.Diagnostic, "timed out")
}

func TestInvoke_LaunchFailure(t *testing.T) {
	result := newInvoker(30).Invoke(context.Background(), invocation("/nonexistent/claude"))

	require.True(t, result.IsError)
	require.NotEmpty(t, result.Diagnostic)
}

func TestName(t *testing.T) {
	require.Equal(t, "claude-cli", newInvoker(30).Name())
}
