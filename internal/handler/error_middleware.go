package handler

import (
	"net/http"

	"github.com/goblog/internal/apperr"
	"github.com/gin-gonic/gin"
)

// ErrorTranslator 包裹整条处理链,是内部失败变成用户可见跳转的唯一出口。
// 失败不重试:每个错误都终止当前请求,以重定向加可选 flash 收场。
func ErrorTranslator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		switch apperr.KindOf(err) {
		case apperr.KindRequest:
			setFlash(c, apperr.MessageOf(err))
			_ = saveSession(c)
			redirectBack(c)
		case apperr.KindNotFound:
			c.Redirect(http.StatusFound, "/404")
		default:
			// DBError、ServerError 与未分类错误同样回首页
			setFlash(c, apperr.MessageOf(err))
			_ = saveSession(c)
			c.Redirect(http.StatusFound, "/")
		}
	}
}
