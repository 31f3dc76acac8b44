package httpd

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
	"github.com/davidbz/hearth/internal/prompt"
	"github.com/davidbz/hearth/internal/toolparse"
)

// errorBody is the structured error envelope the Messages API convention
// uses.
type errorBody struct {
	Type  string      `json:"type"`
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func apiError(message string) errorBody {
	return errorBody{Type: "error", Error: errorDetail{Type: "api_error", Message: message}}
}

func invalidRequest(message string) errorBody {
	return errorBody{Type: "error", Error: errorDetail{Type: "invalid_request_error", Message: message}}
}

// Handler fulfils routed requests against the backend invoker.
type Handler struct {
	invoker  domain.Invoker
	settings *config.Settings
}

// NewHandler creates a new handler (DI constructor).
func NewHandler(invoker domain.Invoker, settings *config.Settings) *Handler {
	return &Handler{
		invoker:  invoker,
		settings: settings,
	}
}

// Health reports liveness and the active backend name.
func (h *Handler) Health() *Response {
	return jsonResponse(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": h.invoker.Name(),
	})
}

// Models returns the static model listing.
func (h *Handler) Models() *Response {
	return jsonResponse(http.StatusOK, domain.Models())
}

// Messages serves POST /v1/messages: it flattens the conversation, runs one
// backend invocation, recovers tool calls from the output, and synthesizes
// either the JSON reply or the scripted SSE sequence.
func (h *Handler) Messages(ctx context.Context, req *Request) *Response {
	var chat domain.ChatRequest
	if err := json.Unmarshal(req.Body, &chat); err != nil {
		observability.FromContext(ctx).Warn("unparsable request body", zap.Error(err))
		return jsonResponse(http.StatusBadRequest, invalidRequest("Invalid JSON body"))
	}

	if chat.Model == "" {
		chat.Model = domain.DefaultModel
	}
	if chat.MaxTokens == 0 {
		chat.MaxTokens = domain.DefaultMaxTokens
	}

	// Operator settings are snapshotted here and never re-read: a settings
	// change cannot race this request.
	snap := h.settings.Current()

	flagSource := chat.Model
	if snap.ModelOverride != "" {
		flagSource = snap.ModelOverride
	}
	modelFlag := domain.ResolveModelFlag(flagSource)

	ctx = observability.WithModel(ctx, chat.Model)
	ctx = observability.WithModelFlag(ctx, modelFlag)

	logger := observability.FromContext(ctx)
	logger.Info("messages request received",
		zap.Int("turns", len(chat.Messages)),
		zap.Int("tools", len(chat.Tools)),
		zap.Int("max_tokens", chat.MaxTokens),
		zap.Bool("stream", chat.Stream),
	)

	inv := domain.Invocation{
		Prompt:       prompt.BuildPrompt(chat.Messages),
		SystemPrompt: prompt.BuildSystemPrompt(chat.System, chat.Tools),
		ModelFlag:    modelFlag,
		Exec: domain.ExecContext{
			Executable: snap.Executable,
			ConfigDir:  snap.ConfigDir,
		},
	}

	start := time.Now()
	result := h.invoker.Invoke(ctx, inv)
	logger.Info("backend responded",
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("error", result.IsError),
	)

	if result.IsError {
		envelope := apiError(result.Diagnostic)
		if chat.Stream {
			return &Response{
				Status:      http.StatusOK,
				ContentType: "text/event-stream",
				Body:        EncodeStreamError(envelope),
				Stream:      true,
			}
		}
		return jsonResponse(http.StatusInternalServerError, envelope)
	}

	// Tool fences are only meaningful when the request declared tools;
	// otherwise fenced prose stays plain text.
	blocks := []domain.ContentBlock{domain.TextBlock(result.Text)}
	if len(chat.Tools) > 0 {
		blocks = toolparse.Parse(result.Text)
	}

	msg := domain.NewResponseMessage(chat.Model, blocks, domain.Usage{
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
	})

	if chat.Stream {
		return &Response{
			Status:      http.StatusOK,
			ContentType: "text/event-stream",
			Body:        EncodeStream(msg),
			Stream:      true,
		}
	}

	return jsonResponse(http.StatusOK, msg)
}
