package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newHex24 returns 24 hex characters of a fresh UUID, matching the id
// width the Messages API convention uses.
func newHex24() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:24]
}

// NewMessageID generates a unique response message id.
func NewMessageID() string {
	return "msg_proxy_" + newHex24()
}

// NewToolUseID generates a unique tool_use block id.
func NewToolUseID() string {
	return "toolu_" + newHex24()
}
