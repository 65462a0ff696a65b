package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kestrel-http/kestrel/uuid"
)

const maxHeaderLine = 8 * 1024

// codecError classifies a read/body error into the taxonomy of §4.2/§7.
type codecError struct {
	status uint16
	silent bool
}

func (e *codecError) Error() string {
	if e.silent {
		return "silent close"
	}
	return "codec error " + strconv.Itoa(int(e.status))
}

var (
	errBodyTooLarge     = &codecError{status: StatusBadRequest}
	errMissingLength    = &codecError{status: StatusBadRequest}
	errSilentClose      = &codecError{silent: true}
	errInternalCodecErr = &codecError{status: StatusInternalServerError}
)

func isSilentCloseErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "i/o timeout")
}

// serveConn is the connection worker's state machine of §4.6:
// S0 Idle -> read headers -> S1 HeadersRead -> classify+read body ->
// S2 BodyReady -> dispatch+write -> S3 WroteResponse -> loop or S4 Closing.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReaderSize(conn, DefaultReadBufferSize)
	bw := bufio.NewWriterSize(conn, DefaultWriteBufferSize)

	remoteHost, remotePort := splitHostPort(conn.RemoteAddr().String())
	chain := s.chain

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.config.KeepAliveTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.config.KeepAliveTimeout))
		}

		req := NewRequest()
		req.RemoteAddr = remoteHost
		req.RemotePort = remotePort

		// S0 Idle -> read request line + headers.
		if err := req.ReadHeaders(br, maxHeaderLine); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Time{})

		if req.IsWebSocketUpgrade() {
			// Detected, never handled (non-goal): close the connection.
			return
		}

		keepAlive := req.KeepAlive()

		spanCtx, span := s.Observability.StartSpan(ctx, req.Method.String()+" "+req.Path)

		// S1 HeadersRead -> classify and read the body.
		reqCtx := &Ctx{Request: req, Logger: s.config.Logger}
		if cErr := s.readBody(req, br); cErr != nil {
			span.End()
			if cErr.silent {
				return
			}
			reqCtx.Response = canned(cErr.status, s.config.ResponseClass, cannedMessage(cErr.status))
			_ = s.writeResponse(bw, reqCtx.Response, false)
			s.Observability.RecordRequest(spanCtx, statusClass(reqCtx.Response.Status()), int64(len(req.Body)), 0)
			return
		}

		// S2 BodyReady -> run the middleware chain to a response.
		chain.invoke(reqCtx)
		reqCtx.closeFiles()

		if reqCtx.Response == nil {
			reqCtx.Response = canned(StatusInternalServerError, s.config.ResponseClass, "Internal Server Error")
		}

		respBytes := int64(len(reqCtx.Response.body))
		s.Observability.RecordRequest(spanCtx, statusClass(reqCtx.Response.Status()), int64(len(req.Body)), respBytes)
		span.End()

		if err := s.writeResponse(bw, reqCtx.Response, keepAlive); err != nil {
			return
		}

		// S3 WroteResponse -> S4 Closing, or loop back to S0.
		if !keepAlive {
			if tc, ok := conn.(*net.TCPConn); ok {
				_ = tc.CloseWrite()
			}
			return
		}
	}
}

func statusClass(status uint16) string {
	switch status / 100 {
	case 1:
		return "1xx"
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	default:
		return "5xx"
	}
}

func cannedMessage(status uint16) string {
	switch status {
	case StatusBadRequest:
		return "Bad Request"
	default:
		return "Internal Server Error"
	}
}

func splitHostPort(addr string) (host, port string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, ""
	}
	return host, port
}

// readBody classifies and reads the request body per §4.2: multipart with
// a boundary is streamed straight to a spool file (requiring
// Content-Length up front); everything else is read fully into memory,
// bounded by MaxRequestSize.
func (s *Server) readBody(req *Request, br *bufio.Reader) *codecError {
	contentLength := req.ContentLength()
	_, isMultipart := req.IsMultipart()

	if isMultipart {
		if contentLength < 0 {
			return errMissingLength
		}
		if int64(contentLength) > s.config.MaxRequestSize {
			return errBodyTooLarge
		}
		if contentLength == 0 {
			return nil
		}
		path, err := s.streamToSpoolFile(br, contentLength)
		if err != nil {
			if isSilentCloseErr(err) {
				return errSilentClose
			}
			return errInternalCodecErr
		}
		req.SpoolPath = path
		return nil
	}

	if contentLength <= 0 {
		return nil
	}
	if int64(contentLength) > s.config.MaxRequestSize {
		// fail closed without allocating the buffer or reading the body.
		return errBodyTooLarge
	}

	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(br, buf); err != nil {
		if isSilentCloseErr(err) {
			return errSilentClose
		}
		return errInternalCodecErr
	}
	req.Body = buf
	return nil
}

// streamToSpoolFile copies exactly n bytes from br into a uniquely-named
// temp file under TmpDir, chunked at MaxChunkSize, per §4.2/§6.
func (s *Server) streamToSpoolFile(br *bufio.Reader, n int) (string, error) {
	if err := os.MkdirAll(s.config.TmpDir, 0o700); err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s/upload-%s", strings.TrimRight(s.config.TmpDir, "/"), uuid.NewV4().String())

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	defer f.Close()

	chunkSize := int(s.config.MaxChunkSize)
	if chunkSize <= 0 {
		chunkSize = 128 * 1024
	}
	buf := make([]byte, chunkSize)

	remaining := n
	for remaining > 0 {
		toRead := chunkSize
		if remaining < toRead {
			toRead = remaining
		}
		read, err := io.ReadFull(br, buf[:toRead])
		if err != nil {
			return "", err
		}
		if _, err := f.Write(buf[:read]); err != nil {
			return "", err
		}
		remaining -= read
	}
	return path, nil
}

// writeResponse implements the write phase of §4.2: buffered/JSON/redirect
// write status+headers+body in one shot; stream writes headers first, then
// invokes the callback, then emits the chunk terminator exactly once; file
// writes headers without Transfer-Encoding and passes the callback's bytes
// through unframed, with no chunk terminator.
func (s *Server) writeResponse(bw *bufio.Writer, resp *Response, keepAlive bool) error {
	defer bw.Flush()

	switch resp.kind {
	case kindStream:
		if err := writeStatusAndHeaders(bw, resp, keepAlive, s.config.KeepAliveTimeout, true); err != nil {
			return err
		}
		cw := &ChunkWriter{bw: bw}
		if resp.stream != nil {
			if err := resp.stream(cw); err != nil {
				if s.config.Logger != nil {
					s.config.Logger.Error("stream response callback failed", "error", err)
				}
			}
		}
		_, err := bw.Write(chunkTerminator)
		return err
	case kindFile:
		// Content-Length is already set on resp.headers (NewFileResponse);
		// no Transfer-Encoding, no chunk framing, no terminator.
		if err := writeStatusAndHeaders(bw, resp, keepAlive, s.config.KeepAliveTimeout, false); err != nil {
			return err
		}
		cw := &ChunkWriter{bw: bw, raw: true}
		if resp.stream != nil {
			if err := resp.stream(cw); err != nil {
				if s.config.Logger != nil {
					s.config.Logger.Error("file response callback failed", "error", err)
				}
			}
		}
		return nil
	default:
		body := resp.body
		if resp.kind == kindRedirect {
			resp.headers.Set("location", resp.location)
		}
		resp.headers.Set("content-length", strconv.Itoa(len(body)))
		if err := writeStatusAndHeaders(bw, resp, keepAlive, s.config.KeepAliveTimeout, false); err != nil {
			return err
		}
		_, err := bw.Write(body)
		return err
	}
}

func writeStatusAndHeaders(bw *bufio.Writer, resp *Response, keepAlive bool, keepAliveTimeout time.Duration, chunked bool) error {
	proto := "HTTP/1.1"
	statusText := statusMessage(resp.status)
	if _, err := fmt.Fprintf(bw, "%s %d %s\r\n", proto, resp.status, statusText); err != nil {
		return err
	}

	for name, value := range resp.headers {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", name, value); err != nil {
			return err
		}
	}
	for _, cookie := range resp.cookies {
		if _, err := fmt.Fprintf(bw, "set-cookie: %s\r\n", cookie); err != nil {
			return err
		}
	}
	if chunked {
		if _, err := bw.Write(headerTransferEncodingChunked); err != nil {
			return err
		}
	}
	if keepAlive {
		if _, err := bw.Write(connectionKeepAlive); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "keep-alive: %s\r\n", keepAliveHeaderValue(keepAliveTimeout)); err != nil {
			return err
		}
	} else {
		if _, err := bw.Write(connectionClose); err != nil {
			return err
		}
	}
	_, err := bw.Write(crlf)
	return err
}

func statusMessage(status uint16) string {
	if int(status) < len(statusMessages) {
		if m := statusMessages[status]; m != "" {
			return m
		}
	}
	return unknownStatusCode
}
