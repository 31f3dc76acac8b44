// Package prompt flattens structured chat requests into the prompt and
// system prompt the one-shot backend consumes.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davidbz/hearth/internal/domain"
)

const toolInstructions = "\n\n---\n" +
	"You have access to the following tools. To use a tool, respond with a JSON block like this:\n" +
	"```tool_use\n{\"name\": \"tool_name\", \"input\": {...}}\n```\n\n" +
	"Available tools:\n"

// BuildPrompt renders the conversation as a single prompt string.
//
// A lone user turn passes through verbatim so the common single-turn case
// stays byte-faithful. Anything longer becomes a Human/Assistant transcript;
// turns with other roles are dropped.
func BuildPrompt(messages []domain.Turn) string {
	if len(messages) == 0 {
		return ""
	}

	if len(messages) == 1 && messages[0].Role == "user" {
		return ExtractText(messages[0].Content)
	}

	var parts []string
	for _, turn := range messages {
		text := ExtractText(turn.Content)
		switch turn.Role {
		case "user":
			parts = append(parts, "Human: "+text)
		case "assistant":
			parts = append(parts, "Assistant: "+text)
		}
	}

	return strings.Join(parts, "\n\n")
}

// ExtractText reduces content to plain text. Plain strings pass through;
// block lists reduce to newline-joined text where tool_result and tool_use
// blocks are rendered as bracketed annotations and unknown blocks contribute
// nothing.
func ExtractText(content domain.Content) string {
	if !content.HasBlocks {
		return content.Text
	}

	var parts []string
	for _, block := range content.Blocks {
		switch block.Type {
		case domain.BlockTypeText:
			parts = append(parts, block.Text)
		case domain.BlockTypeToolResult:
			parts = append(parts, fmt.Sprintf("[Tool result: %s]", compactJSON(block.Content, `""`)))
		case domain.BlockTypeToolUse:
			name := block.Name
			if name == "" {
				name = "?"
			}
			parts = append(parts, fmt.Sprintf("[Tool call: %s(%s)]", name, compactJSON(block.Input, "{}")))
		}
	}

	return strings.Join(parts, "\n")
}

// BuildSystemPrompt combines the request's system content with tool
// definitions. The empty string means the system prompt is absent.
func BuildSystemPrompt(system domain.Content, tools []domain.ToolDef) string {
	var sysText string
	if system.HasBlocks {
		var parts []string
		for _, block := range system.Blocks {
			if block.Type == domain.BlockTypeText {
				parts = append(parts, block.Text)
			}
		}
		sysText = strings.Join(parts, "\n")
	} else {
		sysText = system.Text
	}

	if len(tools) > 0 {
		descriptions := make([]string, 0, len(tools))
		for _, tool := range tools {
			name := tool.Name
			if name == "" {
				name = "unknown"
			}
			schema := prettyJSON(tool.InputSchema, "{}")
			descriptions = append(descriptions, fmt.Sprintf("- **%s**: %s\n  Input schema: %s", name, tool.Description, schema))
		}
		sysText += toolInstructions + strings.Join(descriptions, "\n")
	}

	return sysText
}

func compactJSON(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return fallback
	}
	return buf.String()
}

func prettyJSON(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fallback
	}
	return buf.String()
}
