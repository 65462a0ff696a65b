// Package multipart streams multipart/form-data bodies into a field-name to
// file-part map, bounded by memory/disk thresholds, per §4.3 of the
// specification. It knows nothing about sockets or the http package; it
// consumes either a contiguous byte slice or a path to a spooled file.
package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kestrel-http/kestrel/uuid"
)

// Limits bounds memory usage during parsing, mirroring ServerConfig's
// multipart-related fields (§3, §6).
type Limits struct {
	MaxFileSizeInMemory  int64
	MaxFilesSizeInMemory int64
	MaxChunkSizeDisk     int64
	TmpDir               string
}

func (l Limits) chunkSize() int64 {
	if l.MaxChunkSizeDisk <= 0 {
		return 512 * 1024
	}
	return l.MaxChunkSizeDisk
}

// FilePart is one uploaded file, either fully buffered or spooled to disk.
// A OnDisk part exclusively owns its temp file: Close unlinks it, and a
// closed part's Size reports (0, false) rather than folding "gone" into a
// numeric zero (SPEC_FULL.md open question 4).
type FilePart struct {
	FieldName   string
	Filename    string
	ContentType string
	InMemory    bool

	data     []byte
	tempPath string
	size     int64
	closed   bool
}

func (f *FilePart) Data() ([]byte, bool) {
	if f.closed || !f.InMemory {
		return nil, false
	}
	return f.data, true
}

func (f *FilePart) TempPath() (string, bool) {
	if f.closed || f.InMemory {
		return "", false
	}
	return f.tempPath, true
}

// Size returns the part's byte length, or (0, false) if the part has
// already been closed.
func (f *FilePart) Size() (int64, bool) {
	if f.closed {
		return 0, false
	}
	return f.size, true
}

// Close releases the part. For an on-disk part this unlinks the temp file;
// exclusive ownership means calling this twice is safe (second call is a
// no-op) and callers must not retain TempPath after calling it.
func (f *FilePart) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.InMemory {
		f.data = nil
		return nil
	}
	return BestEffortUnlink(f.tempPath)
}

// BestEffortUnlink removes path, treating "already gone" as success.
func BestEffortUnlink(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type partHeader struct {
	fieldName   string
	filename    string
	hasFilename bool
	contentType string
}

func parsePartHeaders(raw []byte) partHeader {
	var ph partHeader
	ph.contentType = "application/octet-stream"

	for _, line := range strings.Split(string(raw), "\r\n") {
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])
		switch name {
		case "content-disposition":
			ph.fieldName = extractQuoted(value, "name")
			if fn, ok := extractQuotedOK(value, "filename"); ok {
				ph.filename = fn
				ph.hasFilename = true
			}
		case "content-type":
			ph.contentType = value
		}
	}
	return ph
}

func extractQuoted(s, attr string) string {
	v, _ := extractQuotedOK(s, attr)
	return v
}

func extractQuotedOK(s, attr string) (string, bool) {
	needle := attr + "=\""
	idx := strings.Index(s, needle)
	if idx < 0 {
		return "", false
	}
	rest := s[idx+len(needle):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func tempFileName(tmpDir string) string {
	id := uuid.NewV4()
	return fmt.Sprintf("%s/upload-%s", strings.TrimRight(tmpDir, "/"), id.String())
}

var (
	errNoBoundary = errors.New("multipart: no boundary found in content-type")
)

// ParseInMemory implements the in-memory ingest mode of §4.3: the whole
// body is a contiguous byte slice and scanning is index-based. Each part's
// in-memory-vs-disk decision is made exactly once, from its total length.
func ParseInMemory(body []byte, boundary string, limits Limits) (map[string]*FilePart, error) {
	if boundary == "" {
		return map[string]*FilePart{}, nil
	}

	fullBoundary := []byte("--" + boundary)

	files := make(map[string]*FilePart)
	var runningInMemoryTotal int64

	idx := bytes.Index(body, fullBoundary)
	if idx < 0 {
		return map[string]*FilePart{}, nil
	}
	idx += len(fullBoundary)

	for {
		if bytes.HasPrefix(body[idx:], []byte("--")) {
			// closing boundary reached: parse completed successfully.
			return files, nil
		}
		if idx+2 > len(body) || body[idx] != '\r' || body[idx+1] != '\n' {
			return map[string]*FilePart{}, nil
		}
		idx += 2

		headerEnd := bytes.Index(body[idx:], []byte("\r\n\r\n"))
		if headerEnd < 0 {
			return map[string]*FilePart{}, nil
		}
		headers := body[idx : idx+headerEnd]
		contentStart := idx + headerEnd + 4

		nextBoundaryRel := bytes.Index(body[contentStart:], fullBoundary)
		if nextBoundaryRel < 0 {
			return map[string]*FilePart{}, nil
		}
		contentEnd := contentStart + nextBoundaryRel
		// strip the CRLF that precedes the boundary marker.
		trimmedEnd := contentEnd
		if trimmedEnd >= 2 && body[trimmedEnd-2] == '\r' && body[trimmedEnd-1] == '\n' {
			trimmedEnd -= 2
		}
		content := body[contentStart:trimmedEnd]

		ph := parsePartHeaders(headers)
		if ph.hasFilename {
			if _, exists := files[ph.fieldName]; !exists {
				part, err := materializeInMemoryDecision(ph, content, limits, &runningInMemoryTotal)
				if err != nil {
					return map[string]*FilePart{}, nil
				}
				files[ph.fieldName] = part
			}
		}

		idx = contentEnd + len(fullBoundary)
		if idx > len(body) {
			return map[string]*FilePart{}, nil
		}
	}
}

func materializeInMemoryDecision(ph partHeader, content []byte, limits Limits, runningInMemoryTotal *int64) (*FilePart, error) {
	contentLen := int64(len(content))
	fitsInMemory := (limits.MaxFileSizeInMemory <= 0 || contentLen <= limits.MaxFileSizeInMemory) &&
		(limits.MaxFilesSizeInMemory <= 0 || *runningInMemoryTotal+contentLen <= limits.MaxFilesSizeInMemory)

	if fitsInMemory {
		buf := make([]byte, contentLen)
		copy(buf, content)
		*runningInMemoryTotal += contentLen
		return &FilePart{
			FieldName:   ph.fieldName,
			Filename:    ph.filename,
			ContentType: ph.contentType,
			InMemory:    true,
			data:        buf,
			size:        contentLen,
		}, nil
	}

	path := tempFileName(limits.TmpDir)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return nil, err
	}
	return &FilePart{
		FieldName:   ph.fieldName,
		Filename:    ph.filename,
		ContentType: ph.contentType,
		InMemory:    false,
		tempPath:    path,
		size:        contentLen,
	}, nil
}

// ParseFromFile implements the spooled ingest mode of §4.3: the body lives
// on disk and is read in chunks through a rolling search buffer at least
// 2×max(boundary lengths) wide, so a boundary split across two chunk reads
// is still detected. Unlike ParseInMemory, a single part can flip from
// in-memory accumulation to on-disk mid-stream the instant the running
// total crosses MaxFileSizeInMemory, because the total part size isn't
// known in advance (SPEC_FULL.md open question 2).
func ParseFromFile(path, boundary string, limits Limits) (map[string]*FilePart, error) {
	if boundary == "" {
		return map[string]*FilePart{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := &scanner{
		r:               f,
		chunkSize:       limits.chunkSize(),
		fullBoundary:    []byte("--" + boundary),
		closingBoundary: []byte("--" + boundary + "--"),
	}

	if err := s.skipToFirstBoundary(); err != nil {
		return map[string]*FilePart{}, nil
	}

	files := make(map[string]*FilePart)
	var runningInMemoryTotal int64

	for {
		closing, err := s.atBoundaryTail()
		if err != nil {
			return map[string]*FilePart{}, nil
		}
		if closing {
			return files, nil
		}

		headers, err := s.readPartHeaders()
		if err != nil {
			return map[string]*FilePart{}, nil
		}
		ph := parsePartHeaders(headers)

		part, err := s.consumePartBody(ph, limits, &runningInMemoryTotal, files)
		if err != nil {
			return map[string]*FilePart{}, nil
		}
		if part != nil {
			files[ph.fieldName] = part
		}
	}
}

// scanner implements the rolling-window boundary search over an io.Reader.
type scanner struct {
	r               io.Reader
	window          []byte
	eof             bool
	chunkSize       int64
	fullBoundary    []byte
	closingBoundary []byte
}

func (s *scanner) minKeep() int {
	n := len(s.fullBoundary)
	if len(s.closingBoundary) > n {
		n = len(s.closingBoundary)
	}
	return 2 * n
}

func (s *scanner) fill() error {
	if s.eof {
		return io.EOF
	}
	buf := make([]byte, s.chunkSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		s.window = append(s.window, buf[:n]...)
	}
	if err != nil {
		s.eof = true
		if err == io.EOF {
			if n > 0 {
				return nil
			}
			return io.EOF
		}
		return err
	}
	return nil
}

func (s *scanner) skipToFirstBoundary() error {
	for {
		idx := bytes.Index(s.window, s.fullBoundary)
		if idx >= 0 {
			s.window = s.window[idx+len(s.fullBoundary):]
			return nil
		}
		if s.eof {
			return errNoBoundary
		}
		if err := s.fill(); err != nil && err != io.EOF {
			return err
		} else if err == io.EOF && !s.eof {
			s.eof = true
		}
		if s.eof && bytes.Index(s.window, s.fullBoundary) < 0 {
			return errNoBoundary
		}
	}
}

// atBoundaryTail consumes the "--" or "\r\n" immediately following a
// boundary marker, reporting whether it was the closing boundary.
func (s *scanner) atBoundaryTail() (bool, error) {
	for len(s.window) < 4 && !s.eof {
		if err := s.fill(); err != nil && err != io.EOF {
			return false, err
		}
	}
	if bytes.HasPrefix(s.window, []byte("--")) {
		s.window = s.window[2:]
		return true, nil
	}
	if len(s.window) >= 2 && s.window[0] == '\r' && s.window[1] == '\n' {
		s.window = s.window[2:]
		return false, nil
	}
	return false, errors.New("multipart: malformed boundary line")
}

func (s *scanner) readPartHeaders() ([]byte, error) {
	for {
		idx := bytes.Index(s.window, []byte("\r\n\r\n"))
		if idx >= 0 {
			headers := s.window[:idx]
			s.window = s.window[idx+4:]
			out := make([]byte, len(headers))
			copy(out, headers)
			return out, nil
		}
		if s.eof {
			return nil, errors.New("multipart: unterminated part headers")
		}
		if err := s.fill(); err != nil && err != io.EOF {
			return nil, err
		}
	}
}

// consumePartBody scans the window (refilling as needed) until the next
// boundary marker, spilling accumulated bytes to memory or disk as it goes.
func (s *scanner) consumePartBody(ph partHeader, limits Limits, runningInMemoryTotal *int64, existing map[string]*FilePart) (*FilePart, error) {
	skip := !ph.hasFilename || existing[ph.fieldName] != nil

	var (
		memBuf   []byte
		diskFile *os.File
		diskPath string
		total    int64
		onDisk   bool
	)

	flush := func(chunk []byte) error {
		if skip || len(chunk) == 0 {
			return nil
		}
		total += int64(len(chunk))
		if onDisk {
			_, err := diskFile.Write(chunk)
			return err
		}
		wouldFit := (limits.MaxFileSizeInMemory <= 0 || total <= limits.MaxFileSizeInMemory) &&
			(limits.MaxFilesSizeInMemory <= 0 || *runningInMemoryTotal+total <= limits.MaxFilesSizeInMemory)
		if wouldFit {
			memBuf = append(memBuf, chunk...)
			return nil
		}
		// crossed the threshold mid-stream: spill what we have to disk and
		// continue there for the rest of this part.
		var err error
		diskPath = tempFileName(limits.TmpDir)
		diskFile, err = os.OpenFile(diskPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if len(memBuf) > 0 {
			if _, err := diskFile.Write(memBuf); err != nil {
				return err
			}
		}
		if _, err := diskFile.Write(chunk); err != nil {
			return err
		}
		onDisk = true
		memBuf = nil
		return nil
	}

	minKeep := s.minKeep()
	for {
		idx := bytes.Index(s.window, s.fullBoundary)
		if idx >= 0 && (s.eof || len(s.window)-idx >= minKeep) {
			content := s.window[:idx]
			if len(content) >= 2 && content[len(content)-2] == '\r' && content[len(content)-1] == '\n' {
				content = content[:len(content)-2]
			}
			if err := flush(content); err != nil {
				closeDisk(diskFile)
				return nil, err
			}
			s.window = s.window[idx+len(s.fullBoundary):]
			return finalizePart(ph, skip, memBuf, diskFile, diskPath, total, onDisk, runningInMemoryTotal)
		}

		if len(s.window) > minKeep {
			safeLen := len(s.window) - minKeep
			if err := flush(s.window[:safeLen]); err != nil {
				closeDisk(diskFile)
				return nil, err
			}
			s.window = s.window[safeLen:]
		}

		if s.eof {
			closeDisk(diskFile)
			return nil, errNoBoundary
		}
		if err := s.fill(); err != nil && err != io.EOF {
			closeDisk(diskFile)
			return nil, err
		}
	}
}

func closeDisk(f *os.File) {
	if f != nil {
		f.Close()
	}
}

func finalizePart(ph partHeader, skip bool, memBuf []byte, diskFile *os.File, diskPath string, total int64, onDisk bool, runningInMemoryTotal *int64) (*FilePart, error) {
	if onDisk {
		if err := diskFile.Close(); err != nil {
			return nil, err
		}
	}
	if skip {
		if onDisk {
			_ = BestEffortUnlink(diskPath)
		}
		return nil, nil
	}
	if onDisk {
		return &FilePart{
			FieldName:   ph.fieldName,
			Filename:    ph.filename,
			ContentType: ph.contentType,
			InMemory:    false,
			tempPath:    diskPath,
			size:        total,
		}, nil
	}
	*runningInMemoryTotal += total
	buf := make([]byte, len(memBuf))
	copy(buf, memBuf)
	return &FilePart{
		FieldName:   ph.fieldName,
		Filename:    ph.filename,
		ContentType: ph.contentType,
		InMemory:    true,
		data:        buf,
		size:        total,
	}, nil
}
