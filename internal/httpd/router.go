package httpd

import (
	"context"
	"net/http"
)

// Router dispatches a framed request to its handler. CORS headers are not
// its concern: Response.Encode attaches them to every reply uniformly.
type Router struct {
	handler *Handler
}

// NewRouter creates a new router (DI constructor).
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// Route maps (method, path) to a response.
func (r *Router) Route(ctx context.Context, req *Request) *Response {
	if req.Method == http.MethodOptions {
		return &Response{Status: http.StatusNoContent}
	}

	switch {
	case req.Method == http.MethodGet && req.Path == "/health":
		return r.handler.Health()
	case req.Method == http.MethodGet && req.Path == "/v1/models":
		return r.handler.Models()
	case req.Method == http.MethodPost && req.Path == "/v1/messages":
		return r.handler.Messages(ctx, req)
	default:
		return &Response{
			Status:      http.StatusNotFound,
			ContentType: "application/json",
			Body:        []byte(`{"error":"Not Found"}`),
		}
	}
}
