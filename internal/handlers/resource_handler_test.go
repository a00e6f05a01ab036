package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/adapters/storage"
	"blog-content-api/internal/models"
	"blog-content-api/internal/services"
	"blog-content-api/internal/store/memory"
	"blog-content-api/pkg/lambda"
)

type counterIDs struct{ n int }

func (c *counterIDs) NewID() (string, error) {
	c.n++
	return fmt.Sprintf("%d", c.n), nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newHandler(t *testing.T, schema *models.ResourceSchema) (*ResourceHandler, *memory.Store) {
	t.Helper()

	st := memory.New(schema.Plural)
	deps := services.ResourceDeps{
		Schema: schema,
		Store:  st,
		IDs:    &counterIDs{},
		Logger: quietLogger(),
	}
	if schema.HasBlob() {
		deps.Uploader = services.NewBlobUploader(storage.NewMockFileStorage("bucket"), schema.Blob.Label, quietLogger())
	}

	svc, err := services.NewResourceService(deps)
	if err != nil {
		t.Fatalf("NewResourceService() error = %v", err)
	}
	return NewResourceHandler(svc, quietLogger()), st
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, body)
	}
	return out
}

func TestResourceHandler_CategoryLifecycle(t *testing.T) {
	h, _ := newHandler(t, models.CategorySchema)
	ctx := context.Background()

	resp, _ := h.HandleCreate(ctx, &lambda.Request{Body: []byte(`{"title": "Tech News!!"}`)})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, resp.Body)
	}
	created := decode(t, resp.Body)
	if created["message"] != "Category created successfully" {
		t.Errorf("message = %v", created["message"])
	}
	id, _ := created["category_id"].(string)
	if id == "" {
		t.Fatalf("category_id missing from %s", resp.Body)
	}

	resp, _ = h.HandleGet(ctx, &lambda.Request{PathParams: map[string]string{"categoryId": id}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	category := decode(t, resp.Body)["category"].(map[string]interface{})
	if category["slug"] != "tech-news" {
		t.Errorf("slug = %v, want tech-news", category["slug"])
	}

	resp, _ = h.HandleUpdate(ctx, &lambda.Request{
		PathParams: map[string]string{"id": id},
		Body:       []byte(`{"title": "Go Tips"}`),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, body %s", resp.StatusCode, resp.Body)
	}
	updated := decode(t, resp.Body)
	if updated["message"] != "Category updated successfully" {
		t.Errorf("message = %v", updated["message"])
	}
	if updated["category"].(map[string]interface{})["slug"] != "go-tips" {
		t.Errorf("slug not recomputed: %s", resp.Body)
	}

	resp, _ = h.HandleList(ctx, &lambda.Request{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if n := len(decode(t, resp.Body)["categories"].([]interface{})); n != 1 {
		t.Errorf("list returned %d categories, want 1", n)
	}

	resp, _ = h.HandleDelete(ctx, &lambda.Request{PathParams: map[string]string{"categoryId": id}})
	if resp.StatusCode != http.StatusOK || decode(t, resp.Body)["message"] != "Category deleted successfully" {
		t.Errorf("delete = %d %s", resp.StatusCode, resp.Body)
	}

	resp, _ = h.HandleList(ctx, &lambda.Request{})
	if resp.StatusCode != http.StatusNotFound || decode(t, resp.Body)["message"] != "No categories found" {
		t.Errorf("empty list = %d %s", resp.StatusCode, resp.Body)
	}
}

func TestResourceHandler_StatusCodes(t *testing.T) {
	h, st := newHandler(t, models.PostSchema)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() (*lambda.Response, error)
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name: "get missing",
			call: func() (*lambda.Response, error) {
				return h.HandleGet(ctx, &lambda.Request{PathParams: map[string]string{"postId": "nope"}})
			},
			wantStatus: http.StatusNotFound,
			wantKey:    "message",
			wantValue:  "Post not found",
		},
		{
			name: "update missing",
			call: func() (*lambda.Response, error) {
				return h.HandleUpdate(ctx, &lambda.Request{
					PathParams: map[string]string{"postId": "nope"},
					Body:       []byte(`{"title":"x"}`),
				})
			},
			wantStatus: http.StatusNotFound,
			wantKey:    "message",
			wantValue:  "Post not found",
		},
		{
			name: "delete missing",
			call: func() (*lambda.Response, error) {
				return h.HandleDelete(ctx, &lambda.Request{PathParams: map[string]string{"postId": "nope"}})
			},
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantValue:  "Post deleted successfully",
		},
		{
			name: "create missing fields",
			call: func() (*lambda.Response, error) {
				return h.HandleCreate(ctx, &lambda.Request{Body: []byte(`{"title":"only"}`)})
			},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "missing required fields: author_id, category_id, content, description",
		},
		{
			name: "create malformed json",
			call: func() (*lambda.Response, error) {
				return h.HandleCreate(ctx, &lambda.Request{Body: []byte(`{"title":`)})
			},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
		},
		{
			name: "create with bad image",
			call: func() (*lambda.Response, error) {
				return h.HandleCreate(ctx, &lambda.Request{Body: []byte(`{
					"category_id":"c","title":"t","description":"d","content":"c","author_id":"a",
					"image_data":"@@@"}`)})
			},
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
		},
		{
			name: "list empty",
			call: func() (*lambda.Response, error) {
				return h.HandleList(ctx, &lambda.Request{})
			},
			wantStatus: http.StatusNotFound,
			wantKey:    "message",
			wantValue:  "No posts found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.call()
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, resp.Body)
			}
			body := decode(t, resp.Body)
			v, ok := body[tt.wantKey]
			if !ok {
				t.Fatalf("body %s lacks key %q", resp.Body, tt.wantKey)
			}
			if tt.wantValue != "" && v != tt.wantValue {
				t.Errorf("%s = %v, want %q", tt.wantKey, v, tt.wantValue)
			}
		})
	}

	if st.Len() != 0 {
		t.Errorf("failed requests left %d items behind", st.Len())
	}
}

func TestResourceHandler_ProfileInvalidAvatar(t *testing.T) {
	h, st := newHandler(t, models.ProfileSchema)

	resp, _ := h.HandleCreate(context.Background(), &lambda.Request{
		Body: []byte(`{"username":"gopher","full_name":"Go Pher","avatar_data":"not*base64"}`),
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	msg, _ := decode(t, resp.Body)["error"].(string)
	if !strings.HasPrefix(msg, "error uploading avatar to S3") {
		t.Errorf("error = %q", msg)
	}
	if st.Len() != 0 {
		t.Errorf("store holds %d items after failed create", st.Len())
	}
}

func TestResourceHandler_PostWithImage(t *testing.T) {
	h, _ := newHandler(t, models.PostSchema)
	ctx := context.Background()

	body := fmt.Sprintf(`{"category_id":"c","title":"Hi There","description":"d","content":"c","author_id":"a","image_data":%q}`,
		base64.StdEncoding.EncodeToString([]byte("img")))
	resp, _ := h.HandleCreate(ctx, &lambda.Request{Body: []byte(body)})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, resp.Body)
	}
	id := decode(t, resp.Body)["post_id"].(string)

	resp, _ = h.HandleGet(ctx, &lambda.Request{PathParams: map[string]string{"postId": id}})
	post := decode(t, resp.Body)["post"].(map[string]interface{})
	if post["image"] != "mock://bucket/images/"+id+".png" {
		t.Errorf("image = %v", post["image"])
	}
	if post["published"] != false {
		t.Errorf("published = %v", post["published"])
	}
}

func TestResourceHandler_GinRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	posts, _ := newHandler(t, models.PostSchema)
	categories, _ := newHandler(t, models.CategorySchema)

	router := gin.New()
	SetupRoutes(router, &RouterConfig{
		ServiceName: "blog-content-api",
		Version:     "test",
		Handlers:    []*ResourceHandler{posts, categories},
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := do(http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}

	w := do(http.MethodPost, "/api/v1/categories", `{"title":"Tech News!!"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	id := decode(t, w.Body.Bytes())["category_id"].(string)

	w = do(http.MethodGet, "/api/v1/categories/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if decode(t, w.Body.Bytes())["category"].(map[string]interface{})["slug"] != "tech-news" {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = do(http.MethodPatch, "/api/v1/categories/"+id, `{"title":"Other"}`)
	if w.Code != http.StatusOK {
		t.Errorf("patch status = %d", w.Code)
	}

	if w = do(http.MethodGet, "/api/v1/posts", ""); w.Code != http.StatusNotFound {
		t.Errorf("empty posts list status = %d", w.Code)
	}
	if w = do(http.MethodDelete, "/api/v1/categories/"+id, ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w = do(http.MethodGet, "/api/v1/unknown", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", w.Code)
	}
}

func TestSetupRoutes_UnhealthyBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, &RouterConfig{
		ServiceName: "blog-content-api",
		HealthCheck: func() error { return fmt.Errorf("database locked") },
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSetupRoutes_SwaggerUI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, &RouterConfig{ServiceName: "blog-content-api"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "swagger-ui") {
		t.Errorf("swagger index page not served: %.200s", w.Body.String())
	}
}
