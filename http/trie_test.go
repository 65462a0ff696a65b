package http

import "testing"

func TestRouterStaticPreferredOverDynamic(t *testing.T) {
	r := NewRouter()
	static := Sync(func(ctx *Ctx) {})
	dynamic := Sync(func(ctx *Ctx) {})

	if err := r.Insert(MethodGet, "/users/{id}", dynamic); err != nil {
		t.Fatalf("insert dynamic: %v", err)
	}
	if err := r.Insert(MethodGet, "/users/me", static); err != nil {
		t.Fatalf("insert static: %v", err)
	}

	h, params, ok := r.Find(MethodGet, "/users/me")
	if !ok {
		t.Fatal("expected match for /users/me")
	}
	if len(params) != 0 {
		t.Errorf("expected no params for static match, got %v", params)
	}
	_ = h

	_, params, ok = r.Find(MethodGet, "/users/42")
	if !ok {
		t.Fatal("expected match for /users/42")
	}
	if params["id"] != "42" {
		t.Errorf("expected id=42, got %v", params)
	}
}

func TestRouterTrailingSlashNormalization(t *testing.T) {
	r := NewRouter()
	if err := r.Insert(MethodGet, "/health", Sync(func(ctx *Ctx) {})); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, _, ok := r.Find(MethodGet, "/health/"); !ok {
		t.Error("expected trailing slash to normalize to a match")
	}
	if _, _, ok := r.Find(MethodGet, "/"); ok {
		t.Error("root should not match a registered /health route")
	}
}

func TestRouterEmptyMidPathSegmentIsNoMatch(t *testing.T) {
	r := NewRouter()
	if err := r.Insert(MethodGet, "/a/b", Sync(func(ctx *Ctx) {})); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, _, ok := r.Find(MethodGet, "/a//b"); ok {
		t.Error("double slash should not match, per the no-throw divergence")
	}
}

func TestRouterDynamicChildConflictKeepsFirstParamName(t *testing.T) {
	r := NewRouter()
	if err := r.Insert(MethodGet, "/items/{id}", Sync(func(ctx *Ctx) {})); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := r.Insert(MethodPost, "/items/{itemId}", Sync(func(ctx *Ctx) {})); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	_, params, ok := r.Find(MethodPost, "/items/7")
	if !ok {
		t.Fatal("expected match")
	}
	if _, has := params["id"]; !has {
		t.Errorf("expected the first-registered param name 'id' to win, got %v", params)
	}
}

func TestRouterDuplicateRegistrationErrors(t *testing.T) {
	r := NewRouter()
	h := Sync(func(ctx *Ctx) {})
	if err := r.Insert(MethodGet, "/x", h); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := r.Insert(MethodGet, "/x", h); err != ErrRouteExists {
		t.Errorf("expected ErrRouteExists, got %v", err)
	}
}

func TestRouterGroupPrefixesRoutesAndAppliesMiddleware(t *testing.T) {
	r := NewRouter()
	var calls []string

	trace := func(tag string) Middleware {
		return func(next Handler) Handler {
			return Sync(func(ctx *Ctx) {
				calls = append(calls, tag)
				next.invoke(ctx)
			})
		}
	}

	r.Group("/api", func(g *Router) {
		g.GET("/ping", func(ctx *Ctx) {
			ctx.Response = NewTextResponse(StatusOK, "pong")
		})
	}, trace("group"))

	h, _, ok := r.Find(MethodGet, "/api/ping")
	if !ok {
		t.Fatal("expected /api/ping to be registered by Group")
	}
	ctx := &Ctx{Request: &Request{}}
	h.invoke(ctx)

	if len(calls) != 1 || calls[0] != "group" {
		t.Errorf("expected group middleware to run once, got %v", calls)
	}
	if ctx.Response == nil || ctx.Response.Status() != StatusOK {
		t.Errorf("expected 200 response from grouped handler")
	}
}
