package domain

import (
	"bytes"
	"encoding/json"
)

// Content block types used by the Messages wire format.
const (
	BlockTypeText       = "text"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// Stop reasons reported on a completed message.
const (
	StopReasonEndTurn = "end_turn"
	StopReasonToolUse = "tool_use"
)

// DefaultModel is assumed when a request omits the model name.
const DefaultModel = "claude-sonnet-4-20250514"

// DefaultMaxTokens is passed through to the backend but never enforced here.
const DefaultMaxTokens = 4096

// ChatRequest mirrors the POST /v1/messages request body.
type ChatRequest struct {
	Model     string    `json:"model"`
	System    Content   `json:"system"`
	Messages  []Turn    `json:"messages"`
	Tools     []ToolDef `json:"tools"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
}

// Turn is one conversation entry.
type Turn struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// ToolDef declares a tool the caller wants the model to be able to invoke.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Content is either a plain string or an ordered list of content blocks.
// Any other JSON value is kept as its raw text so nothing is ever dropped.
type Content struct {
	Text      string
	Blocks    []ContentBlock
	HasBlocks bool
}

// UnmarshalJSON accepts a string, a block array, or any other JSON value.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &c.Text)
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return err
		}
		c.HasBlocks = true
		c.Blocks = make([]ContentBlock, 0, len(elems))
		for _, elem := range elems {
			c.Blocks = append(c.Blocks, decodeBlock(elem))
		}
		return nil
	default:
		c.Text = string(trimmed)
		return nil
	}
}

// decodeBlock keeps malformed or non-object array elements as text blocks
// instead of failing the whole request.
func decodeBlock(data []byte) ContentBlock {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var block ContentBlock
		if err := json.Unmarshal(trimmed, &block); err == nil {
			return block
		}
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		text = string(trimmed)
	}
	return TextBlock(text)
}

// IsEmpty reports whether the content carries neither text nor blocks.
func (c Content) IsEmpty() bool {
	return c.Text == "" && len(c.Blocks) == 0
}

// ContentBlock is the tagged union of message content variants. Unknown
// types decode without error and are skipped at every translation boundary.
type ContentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// ToolUseBlock builds a tool_use content block with a fresh id.
func ToolUseBlock(name string, input json.RawMessage) ContentBlock {
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	return ContentBlock{Type: BlockTypeToolUse, ID: NewToolUseID(), Name: name, Input: input}
}

// MarshalJSON emits only the fields that belong to the block's variant, so a
// text block always carries its text field even when empty.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case BlockTypeText:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{b.Type, b.Text})
	case BlockTypeToolUse:
		input := b.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		return json.Marshal(struct {
			Type  string          `json:"type"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}{b.Type, b.ID, b.Name, input})
	case BlockTypeToolResult:
		content := b.Content
		if len(content) == 0 {
			content = json.RawMessage(`""`)
		}
		return json.Marshal(struct {
			Type    string          `json:"type"`
			Content json.RawMessage `json:"content"`
		}{b.Type, content})
	default:
		type raw ContentBlock
		return json.Marshal(raw(b))
	}
}

// ResponseMessage is the non-streaming POST /v1/messages reply body.
type ResponseMessage struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   string         `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// NewResponseMessage assembles an assistant message around the given blocks,
// guaranteeing at least one content block and deriving the stop reason.
func NewResponseMessage(model string, blocks []ContentBlock, usage Usage) *ResponseMessage {
	if len(blocks) == 0 {
		blocks = []ContentBlock{TextBlock("")}
	}

	stopReason := StopReasonEndTurn
	for _, b := range blocks {
		if b.Type == BlockTypeToolUse {
			stopReason = StopReasonToolUse
			break
		}
	}

	return &ResponseMessage{
		ID:         NewMessageID(),
		Type:       "message",
		Role:       "assistant",
		Content:    blocks,
		Model:      model,
		StopReason: stopReason,
		Usage:      usage,
	}
}

// Usage tracks token consumption as reported by the backend.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
