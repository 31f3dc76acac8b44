package httpd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidbz/hearth/internal/config"
)

// Response is one fully materialized HTTP reply. The streaming SSE path is
// still a single Response: its body is the whole scripted event sequence,
// written in one atomic burst before the connection closes.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Stream      bool
}

// jsonResponse marshals the payload as an application/json response.
func jsonResponse(status int, payload any) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(`{"error":"Internal Server Error"}`)
		status = http.StatusInternalServerError
	}
	return &Response{Status: status, ContentType: "application/json", Body: body}
}

// Encode serializes the response with the uniform CORS headers,
// Connection: close, and an exact Content-Length on everything but the SSE
// path and 204 replies.
func (r *Response) Encode(cors *config.CORSConfig) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.Status, http.StatusText(r.Status))
	fmt.Fprintf(&b, "Access-Control-Allow-Origin: %s\r\n", cors.AllowedOrigin)
	fmt.Fprintf(&b, "Access-Control-Allow-Methods: %s\r\n", strings.Join(cors.AllowedMethods, ", "))
	fmt.Fprintf(&b, "Access-Control-Allow-Headers: %s\r\n", strings.Join(cors.AllowedHeaders, ", "))
	b.WriteString("Connection: close\r\n")

	if r.ContentType != "" {
		fmt.Fprintf(&b, "Content-Type: %s\r\n", r.ContentType)
	}

	switch {
	case r.Stream:
		b.WriteString("Cache-Control: no-cache\r\n")
	case r.Status == http.StatusNoContent:
		// RFC 9110: no Content-Length on 204.
	default:
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	}

	b.WriteString("\r\n")
	b.Write(r.Body)

	return []byte(b.String())
}
