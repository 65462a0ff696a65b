package http

// HandlerFunc is a synchronous handler: it runs to completion on the worker
// goroutine that dispatched it and writes its result into ctx.Response.
type HandlerFunc func(ctx *Ctx)

// AsyncHandlerFunc is an asynchronous handler: it returns a done channel
// and may return before finishing, signaling completion by closing (or
// sending on) that channel once ctx.Response has been populated.
// This is the Go expression of the source's coroutine-returning-awaitable
// handler variant (SPEC_FULL.md design notes): any channel-based future
// works, the worker just waits on it before proceeding to the write phase.
type AsyncHandlerFunc func(ctx *Ctx) <-chan struct{}

// Handler is the tagged Sync|Async variant described in the spec's design
// notes. It is constructed via Sync or Async and stored, never both.
type Handler struct {
	sync  HandlerFunc
	async AsyncHandlerFunc
}

// Sync wraps a synchronous handler function.
func Sync(fn HandlerFunc) Handler {
	return Handler{sync: fn}
}

// Async wraps an asynchronous handler function.
func Async(fn AsyncHandlerFunc) Handler {
	return Handler{async: fn}
}

func (h Handler) invoke(ctx *Ctx) {
	if h.async != nil {
		<-h.async(ctx)
		return
	}
	h.sync(ctx)
}

// Middleware is an interceptor around the request→response pipeline; it may
// call next zero or one times (short-circuiting by not calling it).
type Middleware func(next Handler) Handler

var NotFoundHandler = Sync(func(ctx *Ctx) {
	ctx.Response = NewTextResponse(StatusNotFound, "Not Found")
})
