package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goblog/internal/db"
	"github.com/goblog/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubHTMLRender 记录最近一次渲染的模板名与数据,不产生真实输出。
type stubHTMLRender struct {
	lastName string
	lastData gin.H
}

type stubHTMLInstance struct {
	parent *stubHTMLRender
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.lastName = name
	if h, ok := data.(gin.H); ok {
		r.lastData = h
	}
	return &stubHTMLInstance{parent: r}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func setupHandlerTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}, &db.Comment{}, &db.Tag{}, &db.PostVisit{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

type testEnv struct {
	router *gin.Engine
	render *stubHTMLRender
	api    *API
}

// newTestEnv 搭建带会话与错误翻译中间件的测试引擎,附带会话种子与 flash 探针路由。
func newTestEnv(t *testing.T, gdb *gorm.DB) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := &stubHTMLRender{}
	r := gin.New()
	r.HTMLRender = stub
	r.Use(sessions.Sessions("goblog_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(ErrorTranslator())

	api := NewAPI(gdb, t.TempDir(), "/static/uploads")

	r.GET("/__seed_login", func(c *gin.Context) {
		setSessionUser(c, service.UserSnapshot{Name: "alice", Email: "alice@example.com", Avatar: "a"})
		if err := saveSession(c); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/__flash", func(c *gin.Context) {
		c.String(http.StatusOK, takeFlash(c))
	})

	return &testEnv{router: r, render: stub, api: api}
}

func (e *testEnv) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	// 同名 Cookie 以最后一个为准,与浏览器覆盖行为一致
	latest := map[string]*http.Cookie{}
	var names []string
	for _, c := range cookies {
		if _, seen := latest[c.Name]; !seen {
			names = append(names, c.Name)
		}
		latest[c.Name] = c
	}
	for _, name := range names {
		req.AddCookie(latest[name])
	}
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

// login 通过种子路由建立登录态,返回会话 Cookie。
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	recorder := e.do(httptest.NewRequest(http.MethodGet, "/__seed_login", nil), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("failed to seed session: status %d", recorder.Code)
	}
	return recorder.Result().Cookies()
}

// flash 用探针路由读出 Cookie 中携带的一次性消息。
func (e *testEnv) flash(t *testing.T, cookies []*http.Cookie) string {
	t.Helper()
	recorder := e.do(httptest.NewRequest(http.MethodGet, "/__flash", nil), cookies)
	return recorder.Body.String()
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
