package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kestrel-http/kestrel/filesystem"
)

// spoolFilePrefix matches the naming multipart.tempFileName uses for spilled
// upload parts (upload-<uuid>).
const spoolFilePrefix = "upload-"

// sweepTmpDir removes spool files under dir that are older than maxAge.
// It runs as a scheduler.Task on the server's periodic sweep job so that
// files orphaned by connections that died mid-upload don't accumulate.
func sweepTmpDir(fs filesystem.Filesystem, dir string, maxAge time.Duration, logger *slog.Logger) {
	entries, err := fs.ListDirectory(dir)
	if err != nil {
		if logger != nil {
			logger.Warn("sweep: listing tmp_dir failed", "dir", dir, "error", err)
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), spoolFilePrefix) {
			continue
		}
		if entry.ModTime().After(cutoff) {
			continue
		}
		path := dir + "/" + entry.Name()
		if err := fs.DeleteFile(path); err != nil && logger != nil {
			logger.Warn("sweep: deleting orphaned spool file failed", "path", path, "error", err)
		}
	}
}
