package httpwire

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Method is a request method. Anything unrecognised is MethodUnknown.
type Method int

const (
	MethodUnknown Method = iota
	MethodOptions
	MethodGet
	MethodHead
	MethodPost
	MethodDelete
	MethodTrace
	MethodConnect
)

var methodNames = map[Method]string{
	MethodUnknown: "UNKNOWN",
	MethodOptions: "OPTIONS",
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodDelete:  "DELETE",
	MethodTrace:   "TRACE",
	MethodConnect: "CONNECT",
}

// ParseMethod maps a method token case-insensitively.
func ParseMethod(s string) Method {
	switch strings.ToUpper(s) {
	case "OPTIONS":
		return MethodOptions
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	case "POST":
		return MethodPost
	case "DELETE":
		return MethodDelete
	case "TRACE":
		return MethodTrace
	case "CONNECT":
		return MethodConnect
	default:
		return MethodUnknown
	}
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return methodNames[MethodUnknown]
}

// ErrorKind classifies request parse failures.
type ErrorKind int

const (
	// NoData means the peer sent nothing before closing.
	NoData ErrorKind = iota + 1
	// MalformedRequest means the request line is not METHOD SP URI SP HTTP/x.
	MalformedRequest
)

func (k ErrorKind) String() string {
	switch k {
	case NoData:
		return "no data"
	case MalformedRequest:
		return "malformed request"
	default:
		return "unknown"
	}
}

var (
	ErrNoData           = errors.New("no data on TCP stream")
	ErrMalformedRequest = errors.New("malformed request")
)

// ParseError is returned by ParseRequest.
type ParseError struct {
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// Is lets callers match ParseError against ErrNoData and ErrMalformedRequest.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrNoData:
		return e.Kind == NoData
	case ErrMalformedRequest:
		return e.Kind == MalformedRequest
	}
	return false
}

// Request is a parsed request head. Body is never populated.
type Request struct {
	Method  Method
	URI     string
	Version string
	Headers map[string]string
	Body    []byte

	// Lines holds the raw request head, terminators stripped.
	Lines []string

	// Terminated is false when the stream ended before the blank line.
	Terminated bool
}

// ParseRequest reads lines from r until an empty line or the end of the
// stream and parses the first one as the request line. A read error ends
// the head the same way end of stream does.
func ParseRequest(r io.Reader) (*Request, error) {
	lines, terminated := readHead(r)

	if len(lines) == 0 {
		return nil, &ParseError{Kind: NoData, Message: "No data on TCP stream"}
	}

	tokens := strings.Split(lines[0], " ")
	if len(tokens) != 3 || !strings.HasPrefix(tokens[2], "HTTP/") {
		return nil, &ParseError{Kind: MalformedRequest, Message: "Malformed request"}
	}

	req := &Request{
		Method:  ParseMethod(tokens[0]),
		URI:     tokens[1],
		Version: tokens[2],
		Lines:   lines,

		Terminated: terminated,
	}

	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}
		req.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return req, nil
}

func readHead(r io.Reader) (lines []string, terminated bool) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	for {
		raw, err := br.ReadString('\n')
		line := strings.TrimSuffix(raw, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			// blank line, or nothing left before the error
			return lines, err == nil && raw != ""
		}
		lines = append(lines, line)
		if err != nil {
			return lines, false
		}
	}
}
