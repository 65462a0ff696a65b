package http

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/kestrel-http/kestrel/json"
)

type responseKind int

const (
	kindBuffered responseKind = iota
	kindJSON
	kindStream
	kindRedirect
	// kindFile is a Stream specialization whose total length is known up
	// front (§4.8): it writes a Content-Length header and the callback's
	// raw bytes, never chunk framing, so the two length signals on the
	// wire never disagree (RFC 7230 §3.3.3).
	kindFile
)

// StreamFunc is invoked after the status line and headers have been
// flushed. It owns chunk framing: every call to ChunkWriter.WriteChunk
// emits one HEX\r\n<bytes>\r\n frame. The connection worker emits the
// terminating "0\r\n\r\n" itself, exactly once, after StreamFunc returns —
// StreamFunc must never write that terminator.
type StreamFunc func(w *ChunkWriter) error

// ChunkWriter frames chunked-transfer-encoding bodies onto a buffered
// writer. The hex-length + CRLF framing mirrors gravel's writeHexToBuffer
// helper (http/helper.go), reused here instead of fmt.Sprintf for the
// hot path.
type ChunkWriter struct {
	bw *bufio.Writer
	// raw disables chunk framing: WriteChunk writes data straight through.
	// Set for File responses, whose Content-Length is already on the wire
	// and must not be joined by Transfer-Encoding: chunked framing too.
	raw bool
}

func (c *ChunkWriter) WriteChunk(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if c.raw {
		_, err := c.bw.Write(data)
		return err
	}
	var hexBuf [16]byte
	n := writeHexToBuffer(len(data), hexBuf[:])
	if _, err := c.bw.Write(hexBuf[:n]); err != nil {
		return err
	}
	if _, err := c.bw.Write(crlf); err != nil {
		return err
	}
	if _, err := c.bw.Write(data); err != nil {
		return err
	}
	_, err := c.bw.Write(crlf)
	return err
}

// Response is the tagged variant described in §3/§4.8: Buffered, JSON,
// Stream, File (a Stream specialization) and Redirect all share this one
// struct, discriminated by kind.
type Response struct {
	kind     responseKind
	status   uint16
	headers  Headers
	cookies  []string
	body     []byte
	stream   StreamFunc
	location string
}

func newResponse(kind responseKind, status uint16) *Response {
	return &Response{kind: kind, status: status, headers: NewHeaders()}
}

func NewTextResponse(status uint16, text string) *Response {
	r := newResponse(kindBuffered, status)
	r.headers.Set("content-type", "text/plain; charset=utf-8")
	r.body = []byte(text)
	return r
}

func NewJSONResponse(status uint16, body []byte) *Response {
	r := newResponse(kindJSON, status)
	r.headers.Set("content-type", "application/json")
	r.body = body
	return r
}

// NewJSONValue marshals v with the module's own zero-allocation encoder
// (json.Marshal) rather than encoding/json, matching the throughput goals
// of §3's response layer.
func NewJSONValue(status uint16, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return NewJSONResponse(status, body), nil
}

func NewStreamResponse(status uint16, contentType string, fn StreamFunc) *Response {
	r := newResponse(kindStream, status)
	if contentType == "" {
		contentType = DefaultMimeType
	}
	r.headers.Set("content-type", contentType)
	r.headers.Set("cache-control", "no-cache")
	r.stream = fn
	return r
}

// validRedirectStatuses are the only statuses passed through unchanged;
// anything else is coerced to 302, per §4.8.
var validRedirectStatuses = map[uint16]bool{
	StatusMovedPermanently:  true,
	StatusFound:             true,
	StatusSeeOther:          true,
	StatusTemporaryRedirect: true,
	StatusPermanentRedirect: true,
}

func NewRedirectResponse(status uint16, location string) *Response {
	if !validRedirectStatuses[status] {
		status = StatusFound
	}
	r := newResponse(kindRedirect, status)
	r.headers.Set("content-type", "text/plain; charset=utf-8")
	r.location = location
	return r
}

// NewFileResponse builds a File response derived from Stream, per §4.8: a
// missing file becomes a 404 Buffered response, a non-regular file becomes
// 400, both swapping kind out from under the caller transparently.
func NewFileResponse(path string) *Response {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NewTextResponse(StatusNotFound, "Not Found")
	}
	if err != nil {
		return NewTextResponse(StatusInternalServerError, "Internal Server Error")
	}
	if !info.Mode().IsRegular() {
		return NewTextResponse(StatusBadRequest, "Bad Request")
	}

	size := info.Size()
	etag := fmt.Sprintf("%q", strconv.FormatInt(info.ModTime().Unix(), 10)+"-"+strconv.FormatInt(size, 10))

	r := NewStreamResponse(StatusOK, MimeTypeForPath(path), func(w *ChunkWriter) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		buf := make([]byte, 32*1024)
		for {
			n, rerr := f.Read(buf)
			if n > 0 {
				if werr := w.WriteChunk(buf[:n]); werr != nil {
					return werr
				}
			}
			if rerr != nil {
				if rerr.Error() == "EOF" {
					return nil
				}
				return rerr
			}
		}
	})
	r.kind = kindFile
	r.headers.Set("content-length", strconv.FormatInt(size, 10))
	r.headers.Set("etag", etag)
	return r
}

func (r *Response) SetHeader(name, value string) *Response {
	r.headers.Set(name, value)
	return r
}

// SetCookie validates and appends a Set-Cookie header value. If validation
// fails (e.g. a malformed __Host- cookie) the error is returned and no
// header is appended.
func (r *Response) SetCookie(c Cookie) error {
	v, err := c.Build()
	if err != nil {
		return err
	}
	r.cookies = append(r.cookies, v)
	return nil
}

func (r *Response) Status() uint16 { return r.status }
