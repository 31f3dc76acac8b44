package httpd

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedRequest reports a request line with fewer than two tokens.
// The connection is abandoned without a response.
var ErrMalformedRequest = errors.New("malformed request line")

var headerBodySeparator = []byte("\r\n\r\n")

// Header is one ordered request header.
type Header struct {
	Name  string
	Value string
}

// Request is one complete parsed HTTP request, immutable once framed.
type Request struct {
	Method  string
	Path    string
	Headers []Header
	Body    []byte
}

// Header returns the first header with the given name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Framer incrementally buffers connection bytes until one complete request
// is assembled. It is chunk-boundary agnostic: bytes may arrive split at any
// position.
type Framer struct {
	buf []byte
}

// NewFramer creates an empty framer for one connection.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends freshly read bytes to the buffer.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
}

// Next attempts to frame a complete request from the buffered bytes. It
// returns (nil, nil) while more input is needed, and ErrMalformedRequest for
// an unusable request line.
func (f *Framer) Next() (*Request, error) {
	sep := bytes.Index(f.buf, headerBodySeparator)
	if sep < 0 {
		return nil, nil
	}

	lines := strings.Split(string(f.buf[:sep]), "\r\n")

	tokens := strings.Fields(lines[0])
	if len(tokens) < 2 {
		return nil, ErrMalformedRequest
	}

	headers := make([]Header, 0, len(lines)-1)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers = append(headers, Header{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	req := &Request{
		Method:  tokens[0],
		Path:    tokens[1],
		Headers: headers,
	}

	contentLength := 0
	if raw, ok := req.Header("Content-Length"); ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			contentLength = n
		}
	}

	bodyStart := sep + len(headerBodySeparator)
	if len(f.buf)-bodyStart < contentLength {
		return nil, nil
	}

	req.Body = f.buf[bodyStart : bodyStart+contentLength]
	return req, nil
}
