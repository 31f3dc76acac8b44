package httpd_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/httpd"
)

type sseFrame struct {
	Event string
	Data  map[string]any
}

func parseFrames(t *testing.T, body []byte) []sseFrame {
	t.Helper()

	raw := strings.TrimSuffix(string(body), "\n\n")
	var frames []sseFrame
	for _, chunk := range strings.Split(raw, "\n\n") {
		lines := strings.SplitN(chunk, "\n", 2)
		require.Len(t, lines, 2, "frame %q", chunk)
		require.True(t, strings.HasPrefix(lines[0], "event: "))
		require.True(t, strings.HasPrefix(lines[1], "data: "))

		var data map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &data))

		frames = append(frames, sseFrame{
			Event: strings.TrimPrefix(lines[0], "event: "),
			Data:  data,
		})
	}
	return frames
}

func eventNames(frames []sseFrame) []string {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.Event
	}
	return names
}

func TestEncodeStream_EventOrder(t *testing.T) {
	msg := domain.NewResponseMessage("m", []domain.ContentBlock{domain.TextBlock("hello")}, domain.Usage{InputTokens: 5, OutputTokens: 2})

	frames := parseFrames(t, httpd.EncodeStream(msg))

	require.Equal(t, []string{
		"message_start",
		"content_block_start",
		"content_block_delta",
		"content_block_stop",
		"message_delta",
		"message_stop",
	}, eventNames(frames))

	start := frames[0].Data
	message, ok := start["message"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{}, message["content"])
	require.Nil(t, message["stop_reason"])
	usage, ok := message["usage"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(5), usage["input_tokens"])
	require.Equal(t, float64(0), usage["output_tokens"])

	delta := frames[4].Data
	require.Equal(t, "end_turn", delta["delta"].(map[string]any)["stop_reason"])
	require.Equal(t, float64(2), delta["usage"].(map[string]any)["output_tokens"])
}

// concatenated text deltas must reproduce the original text exactly, across
// the 20-character chunk boundary.
func TestEncodeStream_DeltaReassembly(t *testing.T) {
	for _, length := range []int{0, 19, 20, 21, 1000} {
		t.Run(fmt.Sprintf("len_%d", length), func(t *testing.T) {
			text := strings.Repeat("x", length)
			msg := domain.NewResponseMessage("m", []domain.ContentBlock{domain.TextBlock(text)}, domain.Usage{})

			var rebuilt strings.Builder
			var deltas int
			for _, f := range parseFrames(t, httpd.EncodeStream(msg)) {
				if f.Event != "content_block_delta" {
					continue
				}
				deltas++
				d := f.Data["delta"].(map[string]any)
				require.Equal(t, "text_delta", d["type"])
				chunk := d["text"].(string)
				require.LessOrEqual(t, len(chunk), 20)
				rebuilt.WriteString(chunk)
			}

			require.Equal(t, text, rebuilt.String())
			require.Equal(t, (length+19)/20, deltas)
		})
	}
}

func TestEncodeStream_ToolUseBlock(t *testing.T) {
	blocks := []domain.ContentBlock{
		domain.TextBlock("calling"),
		domain.ToolUseBlock("lookup", json.RawMessage(`{"q":"x"}`)),
	}
	msg := domain.NewResponseMessage("m", blocks, domain.Usage{})

	frames := parseFrames(t, httpd.EncodeStream(msg))

	require.Equal(t, []string{
		"message_start",
		"content_block_start",
		"content_block_delta",
		"content_block_stop",
		"content_block_start",
		"content_block_delta",
		"content_block_stop",
		"message_delta",
		"message_stop",
	}, eventNames(frames))

	toolStart := frames[4].Data
	require.Equal(t, float64(1), toolStart["index"])
	cb := toolStart["content_block"].(map[string]any)
	require.Equal(t, "tool_use", cb["type"])
	require.Equal(t, "lookup", cb["name"])
	require.Equal(t, map[string]any{}, cb["input"])

	toolDelta := frames[5].Data["delta"].(map[string]any)
	require.Equal(t, "input_json_delta", toolDelta["type"])
	require.JSONEq(t, `{"q":"x"}`, toolDelta["partial_json"].(string))

	finalDelta := frames[7].Data["delta"].(map[string]any)
	require.Equal(t, "tool_use", finalDelta["stop_reason"])
}

func TestEncodeStream_EmptyTextHasNoDeltas(t *testing.T) {
	msg := domain.NewResponseMessage("m", nil, domain.Usage{})

	frames := parseFrames(t, httpd.EncodeStream(msg))

	require.Equal(t, []string{
		"message_start",
		"content_block_start",
		"content_block_stop",
		"message_delta",
		"message_stop",
	}, eventNames(frames))
}

func TestEncodeStreamError(t *testing.T) {
	body := httpd.EncodeStreamError(map[string]string{"type": "error"})

	frames := parseFrames(t, body)
	require.Len(t, frames, 1)
	require.Equal(t, "error", frames[0].Event)
	require.Equal(t, "error", frames[0].Data["type"])
}
