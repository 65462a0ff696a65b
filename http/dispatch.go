package http

import "github.com/kestrel-http/kestrel/multipart"

type cannedBody struct {
	Message string `json:"message"`
}

// canned synthesizes the plain or JSON error/404 body demanded by §7: no
// stack traces or internal identifiers, just a fixed message.
func canned(status uint16, class ResponseClass, message string) *Response {
	if class == ResponseClassJSON {
		resp, err := NewJSONValue(status, cannedBody{Message: message})
		if err != nil {
			return NewTextResponse(status, message)
		}
		return resp
	}
	return NewTextResponse(status, message)
}

func (s *Server) multipartLimits() multipart.Limits {
	return multipart.Limits{
		MaxFileSizeInMemory:  s.config.MaxFileSizeInMemory,
		MaxFilesSizeInMemory: s.config.MaxFilesSizeInMemory,
		MaxChunkSizeDisk:     s.config.MaxChunkSizeDisk,
		TmpDir:               s.config.TmpDir,
	}
}

// coreHandler is the middleware chain's terminal continuation described in
// §4.5: (a) trie lookup, (b) synthesize 404 on no match, (c) build the
// context (multipart parse failures surface as 500), (d) dispatch.
func (s *Server) coreHandler() Handler {
	return Sync(func(ctx *Ctx) {
		req := ctx.Request
		handler, params, ok := s.router.Find(req.Method, req.Path)
		if !ok {
			ctx.Response = canned(StatusNotFound, s.config.ResponseClass, "Not Found")
			return
		}
		ctx.Params = params

		if err := ctx.parseBody(s.multipartLimits()); err != nil {
			if s.config.Logger != nil {
				s.config.Logger.Error("multipart parse failed", "error", err)
			}
			ctx.Response = canned(StatusInternalServerError, s.config.ResponseClass, "Internal Server Error")
			return
		}

		handler.invoke(ctx)
		if ctx.Response == nil {
			ctx.Response = canned(StatusInternalServerError, s.config.ResponseClass, "Internal Server Error")
		}
	})
}
