package http

import "strings"

// DefaultMimeType is returned for unrecognized extensions.
const DefaultMimeType = "application/octet-stream"

// mimeTypes is the extension→media-type table. Supplemented feature
// (SPEC_FULL.md): grounded on the original's mime_types_t static table,
// which the distilled spec calls out-of-scope for the core but does not
// provide — a complete file response needs one.
var mimeTypes = map[string]string{
	".html":     "text/html",
	".htm":      "text/html",
	".css":      "text/css",
	".js":       "text/javascript",
	".json":     "application/json",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".gif":      "image/gif",
	".svg":      "image/svg+xml",
	".ico":      "image/x-icon",
	".pdf":      "application/pdf",
	".txt":      "text/plain",
	".xml":      "application/xml",
	".mp3":      "audio/mpeg",
	".mp4":      "video/mp4",
	".webm":     "video/webm",
	".woff":     "font/woff",
	".woff2":    "font/woff2",
	".ttf":      "font/ttf",
	".otf":      "font/otf",
	".zip":      "application/zip",
	".gz":       "application/gzip",
	".tar":      "application/x-tar",
	".csv":      "text/csv",
	".doc":      "application/msword",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":      "application/vnd.ms-excel",
	".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":      "application/vnd.ms-powerpoint",
	".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".avi":      "video/x-msvideo",
	".bmp":      "image/bmp",
	".epub":     "application/epub+zip",
	".flv":      "video/x-flv",
	".m4a":      "audio/mp4",
	".m4v":      "video/x-m4v",
	".mkv":      "video/x-matroska",
	".ogg":      "audio/ogg",
	".ogv":      "video/ogg",
	".oga":      "audio/ogg",
	".opus":     "audio/opus",
	".wav":      "audio/wav",
	".webp":     "image/webp",
	".tiff":     "image/tiff",
	".tif":      "image/tiff",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
	".rar":      "application/vnd.rar",
	".7z":       "application/x-7z-compressed",
	".apk":      "application/vnd.android.package-archive",
	".exe":      "application/vnd.microsoft.portable-executable",
	".dll":      "application/vnd.microsoft.portable-executable",
	".swf":      "application/x-shockwave-flash",
	".rtf":      "application/rtf",
	".eot":      "application/vnd.ms-fontobject",
	".ps":       "application/postscript",
	".sqlite":   "application/vnd.sqlite3",
	".db":       "application/vnd.sqlite3",
}

// MimeTypeForPath sniffs a media type from a file path's extension,
// case-insensitively, falling back to DefaultMimeType.
func MimeTypeForPath(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return DefaultMimeType
	}
	ext := strings.ToLower(path[idx:])
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return DefaultMimeType
}
