package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goblog/internal/config"
	"github.com/goblog/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	lastName string
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, _ interface{}) render.Render {
	r.lastName = name
	return &stubHTMLInstance{}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func setupRouterTest(t *testing.T) (*gin.Engine, *stubHTMLRender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}, &db.Comment{}, &db.Tag{}, &db.PostVisit{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	// 模板与静态目录留空,渲染换成桩
	r := SetupRouter(gdb, config.AppConfig{SessionSecret: "test-secret"})
	stub := &stubHTMLRender{}
	r.HTMLRender = stub
	return r, stub
}

func TestGuardedRoutesRedirectAnonymous(t *testing.T) {
	r, _ := setupRouterTest(t)

	for _, path := range []string{"/post", "/logout", "/edit/1", "/delete/1", "/reprint/1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusFound {
			t.Fatalf("%s: expected 302, got %d", path, rr.Code)
		}
		if location := rr.Header().Get("Location"); location != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %q", path, location)
		}
	}
}

func TestPublicRoutesRender(t *testing.T) {
	r, stub := setupRouterTest(t)

	tests := []struct {
		path     string
		template string
	}{
		{path: "/", template: "index.html"},
		{path: "/archive", template: "archive.html"},
		{path: "/tags", template: "tags.html"},
		{path: "/links", template: "links.html"},
		{path: "/search?keyword=go", template: "search.html"},
		{path: "/reg", template: "reg.html"},
		{path: "/login", template: "login.html"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.path, rr.Code)
		}
		if stub.lastName != tt.template {
			t.Fatalf("%s: expected template %q, got %q", tt.path, tt.template, stub.lastName)
		}
	}
}

func TestUnmatchedRouteRendersNotFoundPage(t *testing.T) {
	r, stub := setupRouterTest(t)

	req := httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if stub.lastName != "404.html" {
		t.Fatalf("expected 404.html, got %q", stub.lastName)
	}
}
