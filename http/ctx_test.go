package http

import "testing"

func TestCtxBindJSONDecodesBody(t *testing.T) {
	req := NewRequest()
	req.Body = []byte(`{"message":"hi","name":"ada"}`)
	ctx := &Ctx{Request: req}

	var g struct {
		Message string `json:"message"`
		Name    string `json:"name"`
	}
	if err := ctx.BindJSON(&g); err != nil {
		t.Fatalf("BindJSON failed: %v", err)
	}
	if g.Message != "hi" || g.Name != "ada" {
		t.Fatalf("unexpected decode result: %+v", g)
	}
}

func TestCtxBindJSONRejectsMissingBody(t *testing.T) {
	ctx := &Ctx{Request: NewRequest()}

	var g struct{}
	if err := ctx.BindJSON(&g); err == nil {
		t.Fatal("expected error binding a request with no body")
	}
}

func TestCtxBindJSONRejectsMalformedBody(t *testing.T) {
	req := NewRequest()
	req.Body = []byte(`{not json`)
	ctx := &Ctx{Request: req}

	var g struct{}
	if err := ctx.BindJSON(&g); err == nil {
		t.Fatal("expected error binding malformed json")
	}
}
