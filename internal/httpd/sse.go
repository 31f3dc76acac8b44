package httpd

import (
	"bytes"
	"encoding/json"

	"github.com/davidbz/hearth/internal/domain"
)

// textDeltaChunkSize is the fixed slice width used to replay text as
// simulated token deltas.
const textDeltaChunkSize = 20

// streamMessage is the message object inside message_start: empty content,
// null stop_reason, and zero output tokens until the final message_delta.
type streamMessage struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Role         string                `json:"role"`
	Content      []domain.ContentBlock `json:"content"`
	Model        string                `json:"model"`
	StopReason   *string               `json:"stop_reason"`
	StopSequence *string               `json:"stop_sequence"`
	Usage        domain.Usage          `json:"usage"`
}

// frame renders one `event:`/`data:` SSE frame.
func frame(buf *bytes.Buffer, event string, payload any) {
	data, _ := json.Marshal(payload)
	buf.WriteString("event: ")
	buf.WriteString(event)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
}

// EncodeStream scripts the full SSE event sequence for a message that is
// already known in its entirety. The backend call is one-shot and blocking,
// so "streaming" is a faithful replay: message_start, then per block a
// start/delta/stop triple, then message_delta with the final stop reason and
// output tokens, then message_stop.
func EncodeStream(msg *domain.ResponseMessage) []byte {
	var buf bytes.Buffer

	frame(&buf, "message_start", map[string]any{
		"type": "message_start",
		"message": streamMessage{
			ID:      msg.ID,
			Type:    msg.Type,
			Role:    msg.Role,
			Content: []domain.ContentBlock{},
			Model:   msg.Model,
			Usage:   domain.Usage{InputTokens: msg.Usage.InputTokens},
		},
	})

	for idx, block := range msg.Content {
		switch block.Type {
		case domain.BlockTypeToolUse:
			frame(&buf, "content_block_start", map[string]any{
				"type":  "content_block_start",
				"index": idx,
				"content_block": map[string]any{
					"type":  domain.BlockTypeToolUse,
					"id":    block.ID,
					"name":  block.Name,
					"input": map[string]any{},
				},
			})

			input := block.Input
			if len(input) == 0 {
				input = json.RawMessage("{}")
			}
			frame(&buf, "content_block_delta", map[string]any{
				"type":  "content_block_delta",
				"index": idx,
				"delta": map[string]any{
					"type":         "input_json_delta",
					"partial_json": string(input),
				},
			})

		default:
			frame(&buf, "content_block_start", map[string]any{
				"type":          "content_block_start",
				"index":         idx,
				"content_block": map[string]any{"type": domain.BlockTypeText, "text": ""},
			})

			runes := []rune(block.Text)
			for i := 0; i < len(runes); i += textDeltaChunkSize {
				end := i + textDeltaChunkSize
				if end > len(runes) {
					end = len(runes)
				}
				frame(&buf, "content_block_delta", map[string]any{
					"type":  "content_block_delta",
					"index": idx,
					"delta": map[string]any{
						"type": "text_delta",
						"text": string(runes[i:end]),
					},
				})
			}
		}

		frame(&buf, "content_block_stop", map[string]any{
			"type":  "content_block_stop",
			"index": idx,
		})
	}

	frame(&buf, "message_delta", map[string]any{
		"type": "message_delta",
		"delta": map[string]any{
			"stop_reason":   msg.StopReason,
			"stop_sequence": nil,
		},
		"usage": map[string]any{"output_tokens": msg.Usage.OutputTokens},
	})

	frame(&buf, "message_stop", map[string]any{"type": "message_stop"})

	return buf.Bytes()
}

// EncodeStreamError scripts the single error frame a failed invocation emits
// on the streaming path.
func EncodeStreamError(payload any) []byte {
	var buf bytes.Buffer
	frame(&buf, "error", payload)
	return buf.Bytes()
}
