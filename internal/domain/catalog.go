package domain

import "strings"

// modelFlags maps model-name keywords to backend --model flags. Order
// matters: the first substring match wins.
var modelFlags = []struct {
	keyword string
	flag    string
}{
	{"opus", "opus"},
	{"sonnet", "sonnet"},
	{"haiku", "haiku"},
}

// DefaultModelFlag is used when no keyword matches the requested model.
const DefaultModelFlag = "sonnet"

// ResolveModelFlag maps a requested model name to the backend model flag.
func ResolveModelFlag(model string) string {
	lower := strings.ToLower(model)
	for _, m := range modelFlags {
		if strings.Contains(lower, m.keyword) {
			return m.flag
		}
	}
	return DefaultModelFlag
}

// ModelInfo is one entry of the GET /v1/models listing.
type ModelInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// ModelList is the GET /v1/models reply body.
type ModelList struct {
	Data    []ModelInfo `json:"data"`
	HasMore bool        `json:"has_more"`
	FirstID string      `json:"first_id"`
	LastID  string      `json:"last_id"`
}

// catalog lists the model families the backend flags cover. The backend
// resolves anything else to sonnet, so the listing stays static.
var catalog = []ModelInfo{
	{ID: "claude-opus-4-1", Type: "model", DisplayName: "Claude Opus 4.1", CreatedAt: "2025-08-05T00:00:00Z"},
	{ID: "claude-sonnet-4-20250514", Type: "model", DisplayName: "Claude Sonnet 4", CreatedAt: "2025-05-14T00:00:00Z"},
	{ID: "claude-3-5-haiku-20241022", Type: "model", DisplayName: "Claude Haiku 3.5", CreatedAt: "2024-10-22T00:00:00Z"},
}

// Models returns the static model listing.
func Models() ModelList {
	data := make([]ModelInfo, len(catalog))
	copy(data, catalog)

	return ModelList{
		Data:    data,
		HasMore: false,
		FirstID: data[0].ID,
		LastID:  data[len(data)-1].ID,
	}
}
