package handler

import (
	"net/http"

	"github.com/goblog/internal/apperr"
	"github.com/goblog/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowRegister 渲染注册页面
func (a *API) ShowRegister(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "reg.html", gin.H{"title": "注册"})
}

// Register 处理注册:校验、创建用户并直接登录。
func (a *API) Register(c *gin.Context) {
	input := service.RegisterInput{
		Name:           c.PostForm("name"),
		Password:       c.PostForm("password"),
		PasswordRepeat: c.PostForm("password-repeat"),
		Email:          c.PostForm("email"),
	}

	snapshot, err := a.users.Register(input)
	if err != nil {
		a.fail(c, err)
		return
	}

	setSessionUser(c, snapshot)
	setFlash(c, "注册成功!")
	if err := saveSession(c); err != nil {
		a.fail(c, apperr.Wrap(apperr.KindServer, "会话保存失败", err))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// ShowLogin 渲染登录页面
func (a *API) ShowLogin(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{"title": "登录"})
}

// Login 处理登录请求
func (a *API) Login(c *gin.Context) {
	snapshot, err := a.users.Authenticate(c.PostForm("name"), c.PostForm("password"))
	if err != nil {
		a.fail(c, err)
		return
	}

	setSessionUser(c, snapshot)
	setFlash(c, "登录成功!")
	if err := saveSession(c); err != nil {
		a.fail(c, apperr.Wrap(apperr.KindServer, "会话保存失败", err))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout 清除登录态
func (a *API) Logout(c *gin.Context) {
	clearSessionUser(c)
	setFlash(c, "登出成功!")
	if err := saveSession(c); err != nil {
		a.fail(c, apperr.Wrap(apperr.KindServer, "会话保存失败", err))
		return
	}
	c.Redirect(http.StatusFound, "/")
}
