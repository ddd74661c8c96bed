package service

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

const (
	timeLayoutFull = "2006-01-02 15:04"
	timeLayoutDate = "2006-01-02"
)

// RenderMarkdown 将 markdown 源文本渲染为净化后的 HTML。
// 持久化的内容始终是 markdown 源文本，展示内容始终是这里产出的 HTML。
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		// 渲染失败时退回转义后的原文
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// GravatarURL 根据邮箱派生头像地址，48 像素。
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=48", md5.Sum([]byte(normalized)))
}

func formatTime(t time.Time) string {
	return t.Format(timeLayoutFull)
}

func formatDate(t time.Time) string {
	return t.Format(timeLayoutDate)
}
