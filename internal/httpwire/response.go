package httpwire

import (
	"bytes"
	"io"
	"sort"
	"strconv"
)

const (
	// Version is the only protocol version this server speaks.
	Version = "HTTP/1.1"

	crlf = "\r\n"

	defaultContentType = "text/html; charset=utf-8"
)

// Response is an immutable response ready to be serialized.
type Response struct {
	Version    string
	StatusCode StatusCode
	Headers    map[string]string
	Body       []byte
}

// NewResponse builds a response. When body is non-nil a Content-Length is
// added unless supplied, and a Content-Type is added if no headers were
// supplied at all.
func NewResponse(status StatusCode, headers map[string]string, body []byte) *Response {
	var h map[string]string
	if headers != nil || body != nil {
		h = make(map[string]string, len(headers)+2)
	}
	for k, v := range headers {
		h[k] = v
	}

	if body != nil {
		if _, ok := h["Content-Length"]; !ok {
			h["Content-Length"] = strconv.Itoa(len(body))
		}
		if len(headers) == 0 {
			h["Content-Type"] = defaultContentType
		}
	}

	return &Response{
		Version:    Version,
		StatusCode: status,
		Headers:    h,
		Body:       body,
	}
}

// Bytes serializes the status line, headers sorted by name, the blank line
// and the body.
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer

	buf.WriteString(r.Version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(int(r.StatusCode)))
	buf.WriteByte(' ')
	buf.WriteString(r.StatusCode.Reason())
	buf.WriteString(crlf)

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(r.Headers[k])
		buf.WriteString(crlf)
	}

	buf.WriteString(crlf)
	buf.Write(r.Body)

	return buf.Bytes()
}

// WriteTo writes the whole response with a single Write call.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

func (r *Response) String() string {
	return string(r.Bytes())
}
