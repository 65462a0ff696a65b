package multipart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const boundary = "kestrelBoundary"

func buildBody(parts ...string) []byte {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(p)
	}
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

func filePart(field, filename, contentType, content string) string {
	return "Content-Disposition: form-data; name=\"" + field + "\"; filename=\"" + filename + "\"\r\n" +
		"Content-Type: " + contentType + "\r\n\r\n" + content + "\r\n"
}

func TestParseInMemorySmallFileStaysInMemory(t *testing.T) {
	body := buildBody(filePart("avatar", "a.png", "image/png", "binarydata"))
	limits := Limits{MaxFileSizeInMemory: 1024, MaxFilesSizeInMemory: 1024}

	files, err := ParseInMemory(body, boundary, limits)
	if err != nil {
		t.Fatalf("ParseInMemory failed: %v", err)
	}
	f, ok := files["avatar"]
	if !ok {
		t.Fatal("expected avatar field to be present")
	}
	if !f.InMemory {
		t.Error("expected part to stay in memory")
	}
	data, ok := f.Data()
	if !ok || string(data) != "binarydata" {
		t.Errorf("expected binarydata, got %q ok=%v", data, ok)
	}
}

func TestParseInMemorySpillsToDiskOverLimit(t *testing.T) {
	tmpDir := t.TempDir()
	content := strings.Repeat("x", 100)
	body := buildBody(filePart("big", "big.bin", "application/octet-stream", content))
	limits := Limits{MaxFileSizeInMemory: 10, MaxFilesSizeInMemory: 1024, TmpDir: tmpDir}

	files, err := ParseInMemory(body, boundary, limits)
	if err != nil {
		t.Fatalf("ParseInMemory failed: %v", err)
	}
	f, ok := files["big"]
	if !ok {
		t.Fatal("expected big field to be present")
	}
	if f.InMemory {
		t.Error("expected part to spill to disk")
	}
	path, ok := f.TempPath()
	if !ok {
		t.Fatal("expected a temp path for on-disk part")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading spooled file: %v", err)
	}
	if string(data) != content {
		t.Errorf("spooled content mismatch")
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected Close to unlink the temp file")
	}
}

func TestParseInMemoryFirstFieldWins(t *testing.T) {
	body := buildBody(
		filePart("f", "one.txt", "text/plain", "first"),
		filePart("f", "two.txt", "text/plain", "second"),
	)
	files, err := ParseInMemory(body, boundary, Limits{MaxFileSizeInMemory: 1024, MaxFilesSizeInMemory: 1024})
	if err != nil {
		t.Fatalf("ParseInMemory failed: %v", err)
	}
	f := files["f"]
	if f == nil {
		t.Fatal("expected field f")
	}
	data, _ := f.Data()
	if string(data) != "first" {
		t.Errorf("expected the first occurrence to win, got %q", data)
	}
}

func TestParseInMemoryMissingClosingBoundaryFailsClosed(t *testing.T) {
	raw := "--" + boundary + "\r\n" + filePart("f", "a.txt", "text/plain", "data")
	files, err := ParseInMemory([]byte(raw), boundary, Limits{MaxFileSizeInMemory: 1024})
	if err != nil {
		t.Fatalf("expected fail-closed empty map, not an error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files parsed from a body missing its closing boundary, got %d", len(files))
	}
}

func TestParseInMemoryNoBoundaryHeaderYieldsEmpty(t *testing.T) {
	files, err := ParseInMemory([]byte("whatever"), "", Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Error("expected empty map when boundary is empty")
	}
}

func TestParseFromFileInMemoryAndSpillMixed(t *testing.T) {
	tmpDir := t.TempDir()
	small := "short"
	big := strings.Repeat("y", 200)
	body := buildBody(
		filePart("small", "s.txt", "text/plain", small),
		filePart("large", "l.bin", "application/octet-stream", big),
	)

	spoolPath := filepath.Join(tmpDir, "spool")
	if err := os.WriteFile(spoolPath, body, 0o600); err != nil {
		t.Fatalf("seeding spool file: %v", err)
	}

	limits := Limits{MaxFileSizeInMemory: 20, MaxFilesSizeInMemory: 1024, MaxChunkSizeDisk: 64, TmpDir: tmpDir}
	files, err := ParseFromFile(spoolPath, boundary, limits)
	if err != nil {
		t.Fatalf("ParseFromFile failed: %v", err)
	}

	sf, ok := files["small"]
	if !ok || !sf.InMemory {
		t.Fatalf("expected small field to stay in memory, got %+v", sf)
	}
	data, _ := sf.Data()
	if string(data) != small {
		t.Errorf("expected %q, got %q", small, data)
	}

	lf, ok := files["large"]
	if !ok || lf.InMemory {
		t.Fatalf("expected large field to spill to disk, got %+v", lf)
	}
	path, ok := lf.TempPath()
	if !ok {
		t.Fatal("expected temp path for spilled field")
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading spilled file: %v", err)
	}
	if string(onDisk) != big {
		t.Error("spilled content mismatch")
	}
}

func TestParseFromFileMissingClosingBoundaryFailsClosed(t *testing.T) {
	tmpDir := t.TempDir()
	raw := "--" + boundary + "\r\n" + filePart("f", "a.txt", "text/plain", "data")
	spoolPath := filepath.Join(tmpDir, "spool")
	if err := os.WriteFile(spoolPath, []byte(raw), 0o600); err != nil {
		t.Fatalf("seeding spool file: %v", err)
	}

	files, err := ParseFromFile(spoolPath, boundary, Limits{MaxFileSizeInMemory: 1024, TmpDir: tmpDir})
	if err != nil {
		t.Fatalf("expected fail-closed empty map, not an error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestFilePartSizeAfterCloseReportsNotAlive(t *testing.T) {
	body := buildBody(filePart("f", "a.txt", "text/plain", "hello"))
	files, err := ParseInMemory(body, boundary, Limits{MaxFileSizeInMemory: 1024})
	if err != nil {
		t.Fatalf("ParseInMemory failed: %v", err)
	}
	f := files["f"]
	if _, alive := f.Size(); !alive {
		t.Fatal("expected part to be alive before Close")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if size, alive := f.Size(); alive || size != 0 {
		t.Errorf("expected (0, false) after Close, got (%d, %v)", size, alive)
	}
}

func TestBestEffortUnlinkTreatsMissingFileAsSuccess(t *testing.T) {
	if err := BestEffortUnlink(filepath.Join(t.TempDir(), "does-not-exist")); err != nil {
		t.Errorf("expected nil error for a missing file, got %v", err)
	}
}
