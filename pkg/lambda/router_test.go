package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// recordingHandler records which operation was invoked.
type recordingHandler struct {
	called string
	body   []byte
	err    error
}

func (h *recordingHandler) respond(op string, req *Request) (*Response, error) {
	h.called = op
	h.body = req.Body
	if h.err != nil {
		return nil, h.err
	}
	return JSONResponse(http.StatusOK, map[string]string{"op": op}), nil
}

func (h *recordingHandler) HandleCreate(ctx context.Context, req *Request) (*Response, error) {
	return h.respond("create", req)
}
func (h *recordingHandler) HandleGet(ctx context.Context, req *Request) (*Response, error) {
	return h.respond("get", req)
}
func (h *recordingHandler) HandleList(ctx context.Context, req *Request) (*Response, error) {
	return h.respond("list", req)
}
func (h *recordingHandler) HandleUpdate(ctx context.Context, req *Request) (*Response, error) {
	return h.respond("update", req)
}
func (h *recordingHandler) HandleDelete(ctx context.Context, req *Request) (*Response, error) {
	return h.respond("delete", req)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRouter_Route(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		params     map[string]string
		wantOp     string
		wantStatus int
	}{
		{"create", http.MethodPost, nil, "create", http.StatusOK},
		{"list", http.MethodGet, nil, "list", http.StatusOK},
		{"get by resource param", http.MethodGet, map[string]string{"postId": "1"}, "get", http.StatusOK},
		{"get by id fallback", http.MethodGet, map[string]string{"id": "1"}, "get", http.StatusOK},
		{"update put", http.MethodPut, map[string]string{"postId": "1"}, "update", http.StatusOK},
		{"update patch", http.MethodPatch, map[string]string{"postId": "1"}, "update", http.StatusOK},
		{"delete", http.MethodDelete, map[string]string{"postId": "1"}, "delete", http.StatusOK},
		{"delete without id", http.MethodDelete, nil, "", http.StatusMethodNotAllowed},
		{"put without id", http.MethodPut, nil, "", http.StatusMethodNotAllowed},
		{"post with id", http.MethodPost, map[string]string{"postId": "1"}, "", http.StatusMethodNotAllowed},
		{"unknown param ignored", http.MethodGet, map[string]string{"categoryId": "1"}, "list", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			router := NewRouter(h, "postId", quietLogger())

			resp, err := router.Route(context.Background(), &Request{Method: tt.method, PathParams: tt.params})
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if h.called != tt.wantOp {
				t.Errorf("called %q, want %q", h.called, tt.wantOp)
			}
		})
	}
}

func TestRouter_HandleAPIGateway(t *testing.T) {
	h := &recordingHandler{}
	router := NewRouter(h, "categoryId", quietLogger())

	resp, err := router.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/categories",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"title":"Go"}`)),
		IsBase64Encoded: true,
	})
	if err != nil {
		t.Fatalf("HandleAPIGateway() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK || h.called != "create" {
		t.Errorf("unexpected response %d / %q", resp.StatusCode, h.called)
	}
	if string(h.body) != `{"title":"Go"}` {
		t.Errorf("body was not decoded: %q", h.body)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", resp.Headers["Content-Type"])
	}
}

func TestRouter_HandleAPIGatewayErrors(t *testing.T) {
	h := &recordingHandler{err: errors.New("kaboom")}
	router := NewRouter(h, "profileId", quietLogger())

	resp, err := router.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	if err != nil {
		t.Fatalf("HandleAPIGateway() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if resp.Body != `{"error":"Internal server error"}` {
		t.Errorf("body = %s", resp.Body)
	}

	resp, _ = router.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Body:            "***",
		IsBase64Encoded: true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for undecodable body", resp.StatusCode)
	}
}

func TestRequest_PathParam(t *testing.T) {
	req := &Request{PathParams: map[string]string{"id": "fallback", "postId": ""}}
	if got := req.PathParam("postId", "id"); got != "fallback" {
		t.Errorf("PathParam() = %q, want fallback", got)
	}

	empty := &Request{}
	if got := empty.PathParam("postId"); got != "" {
		t.Errorf("PathParam() on nil map = %q", got)
	}
}

func TestJSONResponse_EncodeFailure(t *testing.T) {
	resp := JSONResponse(http.StatusOK, map[string]interface{}{"bad": make(chan int)})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
