// Package toolparse recovers tool-invocation blocks from raw generated
// text, using the fenced ```tool_use convention the system prompt asks the
// backend to follow.
package toolparse

import (
	"encoding/json"
	"strings"

	"github.com/davidbz/hearth/internal/domain"
)

const (
	openFence  = "```tool_use"
	closeFence = "```"
)

// fencePayload is the JSON shape expected inside a tool_use fence.
type fencePayload struct {
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Parse scans text left to right for tool_use fences and returns the
// ordered content blocks. Malformed fence payloads degrade to verbatim text
// blocks; nothing is ever dropped. Callers should only invoke this when the
// request declared tools, so ordinary fenced prose is never misparsed.
func Parse(text string) []domain.ContentBlock {
	var blocks []domain.ContentBlock
	remaining := text

	for {
		start := strings.Index(remaining, openFence)
		if start < 0 {
			break
		}

		if before := strings.TrimSpace(remaining[:start]); before != "" {
			blocks = append(blocks, domain.TextBlock(before))
		}

		after := remaining[start+len(openFence):]
		end := strings.Index(after, closeFence)
		if end < 0 {
			// Truncated output: keep the unterminated tail verbatim.
			if tail := strings.TrimSpace(remaining[start:]); tail != "" {
				blocks = append(blocks, domain.TextBlock(tail))
			}
			remaining = ""
			break
		}

		candidate := strings.TrimSpace(after[:end])
		remaining = after[end+len(closeFence):]

		var payload fencePayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			blocks = append(blocks, domain.TextBlock(openFence+"\n"+candidate+"\n"+closeFence))
			continue
		}

		name := payload.Name
		if name == "" {
			name = "unknown"
		}
		input := payload.Input
		if string(input) == "null" {
			input = nil
		}
		blocks = append(blocks, domain.ToolUseBlock(name, input))
	}

	if trailing := strings.TrimSpace(remaining); trailing != "" {
		blocks = append(blocks, domain.TextBlock(trailing))
	}

	if len(blocks) == 0 {
		blocks = append(blocks, domain.TextBlock(text))
	}

	return blocks
}
