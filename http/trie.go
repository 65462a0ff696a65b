package http

import (
	"errors"
	"strings"
)

var (
	ErrRouteExists    = errors.New("http: route already registered for method and path")
	ErrBadPathSyntax  = errors.New("http: bad path syntax")
	ErrEmptyParamName = errors.New("http: dynamic segment has empty parameter name")
)

// trieNode is one vertex of the route trie, adapted from gravel's own trie
// node: at most one dynamic child per node, method dispatch as a map at the
// terminal node.
type trieNode struct {
	staticChildren map[string]*trieNode
	dynamicChild   *trieNode
	dynamicParam   string
	handlers       map[Method]Handler
}

func newTrieNode() *trieNode {
	return &trieNode{staticChildren: make(map[string]*trieNode)}
}

// Router owns the route trie plus the ordered middleware list, exactly as
// gravel's Router owns Routes+Middleware, except lookup here is a trie
// descent instead of a linear scan over Routes.
type Router struct {
	root       *trieNode
	middleware []Middleware
	locked     bool
}

func NewRouter() *Router {
	return &Router{root: newTrieNode()}
}

// AddMiddleware appends to the router's middleware chain. Mirrors
// register's freeze check (§4.5): once ListenAndServe has folded the
// chain via buildChain, further additions would otherwise be silently
// invisible to the cached chain rather than erroring, so this panics
// instead of allowing that.
func (r *Router) AddMiddleware(mw ...Middleware) {
	if r.locked {
		panic(ErrConfigLocked)
	}
	r.middleware = append(r.middleware, mw...)
}

// Middleware returns the router's currently registered middleware, in
// registration order.
func (r *Router) Middleware() []Middleware {
	return r.middleware
}

// splitPath normalizes and splits a path per §4.1: strip trailing '/' except
// for the root, split on '/', "/" or "" yields zero segments.
func splitPath(path string) []string {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	if path == "/" {
		return nil
	}
	path = strings.TrimPrefix(path, "/")
	return strings.Split(path, "/")
}

func parseSegment(seg string) (name string, dynamic bool, err error) {
	if seg == "" {
		return "", false, ErrBadPathSyntax
	}
	openBrace := strings.IndexByte(seg, '{')
	closeBrace := strings.IndexByte(seg, '}')
	if openBrace < 0 && closeBrace < 0 {
		return seg, false, nil
	}
	if openBrace != 0 || closeBrace != len(seg)-1 || closeBrace <= openBrace {
		return "", false, ErrBadPathSyntax
	}
	name = seg[1:closeBrace]
	if name == "" {
		return "", false, ErrEmptyParamName
	}
	return name, true, nil
}

// Insert registers handler for method at path. Dynamic-child conflicts are a
// documented quirk, not an error: extending an existing dynamic child with a
// different parameter name silently keeps the first name (see SPEC_FULL.md,
// open question 1).
func (r *Router) Insert(method Method, path string, handler Handler) error {
	segments := splitPath(path)

	node := r.root
	for _, seg := range segments {
		name, dynamic, err := parseSegment(seg)
		if err != nil {
			return err
		}
		if dynamic {
			if node.dynamicChild == nil {
				node.dynamicChild = newTrieNode()
				node.dynamicParam = name
			}
			node = node.dynamicChild
			continue
		}
		child, ok := node.staticChildren[name]
		if !ok {
			child = newTrieNode()
			node.staticChildren[name] = child
		}
		node = child
	}

	if node.handlers == nil {
		node.handlers = make(map[Method]Handler)
	}
	if _, exists := node.handlers[method]; exists {
		return ErrRouteExists
	}
	node.handlers[method] = handler
	return nil
}

// Find walks the trie for method/path. An empty segment mid-path (from a
// double slash) is treated as no-match rather than an error — an
// intentional divergence from the source implementation (open question 3).
func (r *Router) Find(method Method, path string) (Handler, map[string]string, bool) {
	segments := splitPath(path)

	node := r.root
	var params map[string]string
	for _, seg := range segments {
		if seg == "" {
			return Handler{}, nil, false
		}
		if child, ok := node.staticChildren[seg]; ok {
			node = child
			continue
		}
		if node.dynamicChild != nil {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[node.dynamicParam] = seg
			node = node.dynamicChild
			continue
		}
		return Handler{}, nil, false
	}

	if node.handlers == nil {
		return Handler{}, nil, false
	}
	h, ok := node.handlers[method]
	if !ok {
		return Handler{}, nil, false
	}
	return h, params, true
}
