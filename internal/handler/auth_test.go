package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequireAuthenticatedRedirectsAnonymous(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	defer cleanup()

	env := newTestEnv(t, gdb)
	handlerReached := false
	env.router.GET("/post", RequireAuthenticated(), func(c *gin.Context) { handlerReached = true })

	recorder := env.do(httptest.NewRequest(http.MethodGet, "/post", nil), nil)

	if recorder.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/login" {
		t.Fatalf("expected redirect to /login, got %q", location)
	}
	if handlerReached {
		t.Fatal("expected downstream handler not to run")
	}
	if flash := env.flash(t, recorder.Result().Cookies()); flash != "未登录!" {
		t.Fatalf("expected flash 未登录!, got %q", flash)
	}
}

func TestRequireAnonymousRedirectsLoggedIn(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	defer cleanup()

	env := newTestEnv(t, gdb)
	handlerReached := false
	env.router.GET("/login", RequireAnonymous(), func(c *gin.Context) { handlerReached = true })

	cookies := env.login(t)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Referer", "/archive")
	recorder := env.do(req, cookies)

	if recorder.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/archive" {
		t.Fatalf("expected redirect back to referrer, got %q", location)
	}
	if handlerReached {
		t.Fatal("expected login handler not to run")
	}

	cookies = append(cookies, recorder.Result().Cookies()...)
	if flash := env.flash(t, cookies); flash != "已登录!" {
		t.Fatalf("expected flash 已登录!, got %q", flash)
	}
}

func TestSessionUserRoundTrip(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	defer cleanup()

	env := newTestEnv(t, gdb)
	env.router.GET("/__whoami", func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.String(http.StatusOK, "")
			return
		}
		c.String(http.StatusOK, user.Name)
	})

	cookies := env.login(t)
	recorder := env.do(httptest.NewRequest(http.MethodGet, "/__whoami", nil), cookies)
	if recorder.Body.String() != "alice" {
		t.Fatalf("expected session user alice, got %q", recorder.Body.String())
	}

	// 未携带 Cookie 时没有登录态
	recorder = env.do(httptest.NewRequest(http.MethodGet, "/__whoami", nil), nil)
	if recorder.Body.String() != "" {
		t.Fatalf("expected no session user, got %q", recorder.Body.String())
	}
}

func TestFlashIsOneShot(t *testing.T) {
	gdb, cleanup := setupHandlerTestDB(t)
	defer cleanup()

	env := newTestEnv(t, gdb)
	env.router.GET("/__set_flash", func(c *gin.Context) {
		setFlash(c, "只此一次")
		_ = saveSession(c)
		c.String(http.StatusOK, "ok")
	})

	recorder := env.do(httptest.NewRequest(http.MethodGet, "/__set_flash", nil), nil)
	cookies := recorder.Result().Cookies()

	first := env.do(httptest.NewRequest(http.MethodGet, "/__flash", nil), cookies)
	if first.Body.String() != "只此一次" {
		t.Fatalf("expected flash on first read, got %q", first.Body.String())
	}

	// 消费后 Cookie 被重写,带上新 Cookie 再读应为空
	second := env.do(httptest.NewRequest(http.MethodGet, "/__flash", nil), first.Result().Cookies())
	if second.Body.String() != "" {
		t.Fatalf("expected flash cleared on second read, got %q", second.Body.String())
	}
}
