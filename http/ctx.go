package http

import (
	"fmt"
	"log/slog"

	"github.com/kestrel-http/kestrel/json"
	"github.com/kestrel-http/kestrel/multipart"
)

// Ctx binds a parsed request to its route params and (if applicable) its
// parsed multipart file map, per §4.4. It is immutable from the handler's
// point of view except for Response, which the handler populates.
type Ctx struct {
	Request  *Request
	Params   map[string]string
	Response *Response
	Logger   *slog.Logger

	files map[string]*multipart.FilePart
}

// Param returns a path parameter bound by the trie, or "" if absent.
func (c *Ctx) Param(name string) string {
	if c.Params == nil {
		return ""
	}
	return c.Params[name]
}

// File returns a borrow of a parsed multipart file part by field name.
func (c *Ctx) File(name string) (*multipart.FilePart, bool) {
	f, ok := c.files[name]
	return f, ok
}

// BindJSON decodes the request body into dest, which must be a non-nil
// pointer. It uses this module's own json package rather than
// encoding/json, matching gravel's choice to own its serialization stack
// end to end. Only in-memory bodies are supported — a spooled (multipart)
// body has already been consumed by parseBody by the time a handler runs.
func (c *Ctx) BindJSON(dest any) error {
	if c.Request == nil || c.Request.Body == nil {
		return fmt.Errorf("http: BindJSON: request has no in-memory body")
	}
	if err := json.Unmarshal(c.Request.Body, dest); err != nil {
		return fmt.Errorf("http: BindJSON: %w", err)
	}
	return nil
}

// closeFiles releases every parsed file part, unlinking any on-disk temp
// files. Called once per request after the handler (and any middleware
// observing the response) has run, matching the invariant that temp files
// don't outlive the owning context (§8).
func (c *Ctx) closeFiles() {
	for _, f := range c.files {
		_ = f.Close()
	}
}

// parseBody is the HTTP context builder of §4.4: it inspects Content-Type
// and, for multipart requests, dispatches to whichever of the two parser
// code paths matches how the body arrived (spooled to a temp file, or
// already fully in memory), then best-effort-unlinks any request-owned
// spool file once parsing has consumed it. It fills in c.files in place.
func (c *Ctx) parseBody(limits multipart.Limits) error {
	req := c.Request
	boundary, isMultipart := req.IsMultipart()
	if !isMultipart {
		return nil
	}

	var (
		files map[string]*multipart.FilePart
		err   error
	)
	if req.SpoolPath != "" {
		files, err = multipart.ParseFromFile(req.SpoolPath, boundary, limits)
		if unlinkErr := multipart.BestEffortUnlink(req.SpoolPath); unlinkErr != nil && c.Logger != nil {
			c.Logger.Error("unlinking spooled request body failed", "path", req.SpoolPath, "error", unlinkErr)
		}
	} else {
		files, err = multipart.ParseInMemory(req.Body, boundary, limits)
	}
	if err != nil {
		return err
	}
	c.files = files
	return nil
}
