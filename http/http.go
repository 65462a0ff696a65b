// Package http implements the connection loop, HTTP/1.1 codec, route trie,
// middleware chain and response variants of the kestrel server framework.
package http

import "time"

const (
	DefaultReadBufferSize  = 64 * 1024
	DefaultWriteBufferSize = 64 * 1024
)

// Method is the HTTP request method, closed over the set this framework
// understands; anything else parses to MethodUnknown.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
)

var methodNames = [...]string{
	MethodUnknown: "UNKNOWN",
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "UNKNOWN"
}

func ParseMethod(s string) Method {
	switch s {
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "DELETE":
		return MethodDelete
	case "CONNECT":
		return MethodConnect
	case "OPTIONS":
		return MethodOptions
	case "TRACE":
		return MethodTrace
	case "PATCH":
		return MethodPatch
	default:
		return MethodUnknown
	}
}

var (
	protocolHTTP10 = []byte("HTTP/1.0")
	protocolHTTP11 = []byte("HTTP/1.1")

	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")

	chunkTerminator = []byte("0\r\n\r\n")

	headerTransferEncodingChunked = []byte("transfer-encoding: chunked\r\n")
	connectionKeepAlive           = []byte("connection: keep-alive\r\n")
	connectionClose               = []byte("connection: close\r\n")
)

// keepAliveHeaderValue is advertised in the Keep-Alive response header when
// a connection is kept open; ServerConfig.KeepAliveTimeout controls the
// timeout= parameter.
func keepAliveHeaderValue(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return "timeout=" + itoa(secs)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
