package handler

import (
	"github.com/goblog/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	posts     *service.PostService
	users     *service.UserService
	analytics *service.AnalyticsService
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		posts:     service.NewPostService(gdb),
		users:     service.NewUserService(gdb),
		analytics: service.NewAnalyticsService(gdb),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// renderHTML 渲染模板时自动附加会话中的当前用户与一次性 flash 消息。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["user"]; !exists {
		payload["user"] = currentUser(c)
	}
	if _, exists := payload["flash"]; !exists {
		payload["flash"] = takeFlash(c)
	}

	c.HTML(status, template, payload)
}

// fail 把错误交给错误翻译中间件处理并终止后续处理。
func (a *API) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
