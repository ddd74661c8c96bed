package handler

import (
	"net/http"

	"github.com/goblog/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionKeyUserName   = "user_name"
	sessionKeyUserEmail  = "user_email"
	sessionKeyUserAvatar = "user_avatar"
	sessionKeyFlash      = "flash"
)

// currentUser 读取会话中的用户快照,未登录时返回 nil。
func currentUser(c *gin.Context) *service.UserSnapshot {
	session := sessions.Default(c)
	name, ok := session.Get(sessionKeyUserName).(string)
	if !ok || name == "" {
		return nil
	}

	snapshot := service.UserSnapshot{Name: name}
	if email, ok := session.Get(sessionKeyUserEmail).(string); ok {
		snapshot.Email = email
	}
	if avatar, ok := session.Get(sessionKeyUserAvatar).(string); ok {
		snapshot.Avatar = avatar
	}
	return &snapshot
}

// setSessionUser 将不含密码的用户快照写入会话,不落盘。
// 每个请求只在收尾处调用一次 saveSession,避免重复的 Set-Cookie。
func setSessionUser(c *gin.Context, user service.UserSnapshot) {
	session := sessions.Default(c)
	session.Set(sessionKeyUserName, user.Name)
	session.Set(sessionKeyUserEmail, user.Email)
	session.Set(sessionKeyUserAvatar, user.Avatar)
}

// clearSessionUser 清除会话中的登录态,保留其余键,不落盘。
func clearSessionUser(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(sessionKeyUserName)
	session.Delete(sessionKeyUserEmail)
	session.Delete(sessionKeyUserAvatar)
}

// setFlash 写入一次性提示消息,下次渲染时被消费,不落盘。
func setFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.Set(sessionKeyFlash, message)
}

// saveSession 把累计的会话修改写回 Cookie。
func saveSession(c *gin.Context) error {
	return sessions.Default(c).Save()
}

// takeFlash 读取并清除 flash 消息,有消息时立即落盘。
func takeFlash(c *gin.Context) string {
	session := sessions.Default(c)
	message, ok := session.Get(sessionKeyFlash).(string)
	if !ok {
		return ""
	}
	session.Delete(sessionKeyFlash)
	_ = session.Save()
	return message
}

// flashRedirect 写入 flash、落盘会话并跳转,是写操作成功后的统一收尾。
func flashRedirect(c *gin.Context, message, target string) {
	setFlash(c, message)
	_ = saveSession(c)
	c.Redirect(http.StatusFound, target)
}

// redirectBack 跳转回来源页面,缺失 Referer 时退回首页。
func redirectBack(c *gin.Context) {
	target := c.Request.Referer()
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}

// RequireAuthenticated 守卫:未登录请求带 flash 跳转到登录页,不再进入后续处理。
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			setFlash(c, "未登录!")
			_ = saveSession(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnonymous 守卫:已登录请求带 flash 跳回来源页,不再进入后续处理。
func RequireAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			setFlash(c, "已登录!")
			_ = saveSession(c)
			redirectBack(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
