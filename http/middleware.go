package http

import "log/slog"

// buildChain folds an ordered middleware list right-to-left into a single
// handler, per §4.5: chain(req) == m1(req, r -> m2(r, ... mn(r, core))).
// Frozen once at server start; the Router's locked flag prevents further
// registration.
func buildChain(middlewares []Middleware, core Handler) Handler {
	chain := core
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}
	return chain
}

// Recover wraps the chain in a panic recovery boundary, adapted from
// gravel's RecoverMiddleware: a panicking handler becomes a synthesized 500
// instead of taking down the connection worker.
func Recover(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return Sync(func(ctx *Ctx) {
			defer func() {
				if r := recover(); r != nil {
					if logger != nil {
						logger.Error("panic recovered in handler", "panic", r)
					}
					ctx.Response = NewTextResponse(StatusInternalServerError, "Internal Server Error")
				}
			}()
			next.invoke(ctx)
		})
	}
}

// CORSOptions configures the CORS example middleware (a SPEC_FULL.md
// supplemented feature — the middleware mechanism is core, this is one
// concrete instance of it).
type CORSOptions struct {
	AllowOrigin      string
	AllowMethods     string
	AllowHeaders     string
	AllowCredentials bool
}

// CORS is the example middleware §1 refers to when it calls the CORS
// middleware "out of scope for the core, an example middleware" — the
// middleware *mechanism* is core, this is one instance of it.
func CORS(opts CORSOptions) Middleware {
	if opts.AllowMethods == "" {
		opts.AllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	}
	if opts.AllowHeaders == "" {
		opts.AllowHeaders = "Content-Type, Authorization"
	}
	return func(next Handler) Handler {
		return Sync(func(ctx *Ctx) {
			if ctx.Request.Method == MethodOptions {
				resp := NewTextResponse(StatusNoContent, "")
				applyCORSHeaders(resp, opts)
				ctx.Response = resp
				return
			}
			next.invoke(ctx)
			if ctx.Response != nil {
				applyCORSHeaders(ctx.Response, opts)
			}
		})
	}
}

func applyCORSHeaders(r *Response, opts CORSOptions) {
	origin := opts.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	r.SetHeader("access-control-allow-origin", origin)
	r.SetHeader("access-control-allow-methods", opts.AllowMethods)
	r.SetHeader("access-control-allow-headers", opts.AllowHeaders)
	if opts.AllowCredentials {
		r.SetHeader("access-control-allow-credentials", "true")
	}
}
