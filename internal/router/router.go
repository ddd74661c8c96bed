package router

import (
	"html/template"

	"github.com/goblog/internal/config"
	"github.com/goblog/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由。
// cfg.TemplateGlob 为空时跳过模板加载,测试里以此换上桩渲染器。
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("goblog_session", store))

	// 错误翻译中间件包裹整条处理链
	r.Use(handler.ErrorTranslator())

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	})
	if cfg.TemplateGlob != "" {
		r.LoadHTMLGlob(cfg.TemplateGlob)
	}

	// 静态文件服务
	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}

	api := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)

	r.GET("/", api.ShowHome)
	r.GET("/archive", api.ShowArchive)
	r.GET("/tags", api.ShowTags)
	r.GET("/tags/:tag", api.ShowTag)
	r.GET("/links", api.ShowLinks)
	r.GET("/search", api.Search)
	r.GET("/u/:name", api.ShowUserPosts)
	r.GET("/p/:id", api.ShowPost)

	// 仅限未登录用户的路由
	anonymous := r.Group("")
	anonymous.Use(handler.RequireAnonymous())
	{
		anonymous.GET("/reg", api.ShowRegister)
		anonymous.POST("/reg", api.Register)
		anonymous.GET("/login", api.ShowLogin)
		anonymous.POST("/login", api.Login)
	}

	// 需要登录的路由
	auth := r.Group("")
	auth.Use(handler.RequireAuthenticated())
	{
		auth.GET("/post", api.ShowCompose)
		auth.POST("/post", api.CreatePost)
		auth.GET("/logout", api.Logout)
		auth.POST("/p/:id", api.CreateComment)
		auth.GET("/edit/:id", api.ShowEdit)
		auth.POST("/edit/:id", api.UpdatePost)
		auth.GET("/delete/:id", api.DeletePost)
		auth.GET("/reprint/:id", api.ReprintPost)
		auth.POST("/upload", api.UploadImage)
	}

	// 未匹配路由统一落到 404 页面
	r.NoRoute(api.ShowNotFound)

	return r
}
