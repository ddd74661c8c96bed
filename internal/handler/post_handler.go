package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/goblog/internal/apperr"
	"github.com/goblog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	visitorCookieName   = "gb_visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// ShowHome 渲染首页文章列表,p 参数为 1 起始的页码。
func (a *API) ShowHome(c *gin.Context) {
	a.showPostList(c, "index.html", "主页", "")
}

// ShowUserPosts 渲染某个作者的文章列表
func (a *API) ShowUserPosts(c *gin.Context) {
	name := c.Param("name")
	a.showPostList(c, "user.html", name, name)
}

func (a *API) showPostList(c *gin.Context, template, title, author string) {
	page := parsePositiveInt(c.DefaultQuery("p", "1"), 1)

	posts, err := a.posts.ListPage(author, page)
	if err != nil {
		a.fail(c, err)
		return
	}
	total, err := a.posts.Count(author)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, template, gin.H{
		"title":       title,
		"posts":       posts,
		"page":        page,
		"isFirstPage": page == 1,
		"isLastPage":  (page-1)*service.PageSize+len(posts) == int(total),
	})
}

// ShowCompose 渲染发表页面
func (a *API) ShowCompose(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "post.html", gin.H{"title": "发表"})
}

// CreatePost 发布新文章,作者取自会话。
func (a *API) CreatePost(c *gin.Context) {
	user := currentUser(c)

	input := service.PostInput{
		Title:   c.PostForm("title"),
		Tags:    parseTagsField(c.PostFormArray("tags")),
		Content: c.PostForm("content"),
	}

	if _, err := a.posts.Create(*user, input); err != nil {
		a.fail(c, err)
		return
	}

	flashRedirect(c, "发布成功!", "/")
}

// ShowArchive 渲染存档页面
func (a *API) ShowArchive(c *gin.Context) {
	posts, err := a.posts.Archive()
	if err != nil {
		a.fail(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "archive.html", gin.H{
		"title": "存档",
		"posts": posts,
	})
}

// ShowTags 渲染标签索引页面
func (a *API) ShowTags(c *gin.Context) {
	tags, err := a.posts.Tags()
	if err != nil {
		a.fail(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "tags.html", gin.H{
		"title": "标签",
		"tags":  tags,
	})
}

// ShowTag 渲染单个标签下的文章列表
func (a *API) ShowTag(c *gin.Context) {
	tag := c.Param("tag")
	posts, err := a.posts.PostsByTag(tag)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "tag.html", gin.H{
		"title": "TAG:" + tag,
		"tag":   tag,
		"posts": posts,
	})
}

// ShowLinks 渲染友情链接页面
func (a *API) ShowLinks(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "links.html", gin.H{"title": "友情链接"})
}

// Search 按标题关键字搜索文章
func (a *API) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	posts, err := a.posts.Search(keyword)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "search.html", gin.H{
		"title":   "SEARCH:" + keyword,
		"keyword": keyword,
		"posts":   posts,
	})
}

// ShowPost 渲染单篇文章,浏览计数加一并记录访客日志。
func (a *API) ShowPost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	post, err := a.posts.GetOne(id)
	if err != nil {
		a.fail(c, err)
		return
	}

	// 访问日志尽力而为,失败只打日志
	if visitErr := a.analytics.RecordVisit(id, a.visitorID(c)); visitErr != nil {
		log.Printf("record visit for post %d: %v", id, visitErr)
	}

	a.renderHTML(c, http.StatusOK, "article.html", gin.H{
		"title": post.Title,
		"post":  post,
	})
}

// CreateComment 向文章追加一条留言
func (a *API) CreateComment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	input := service.CommentInput{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Website: c.PostForm("website"),
		Content: c.PostForm("content"),
	}

	if err := a.posts.AddComment(id, input); err != nil {
		a.fail(c, err)
		return
	}

	target := c.Request.Referer()
	if target == "" {
		target = fmt.Sprintf("/p/%d", id)
	}
	flashRedirect(c, "留言成功!", target)
}

// ShowEdit 渲染编辑页面,只有作者本人能取到原文。
func (a *API) ShowEdit(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	user := currentUser(c)
	post, err := a.posts.GetEdit(id, user.Name)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "edit.html", gin.H{
		"title": "编辑",
		"post":  post,
	})
}

// UpdatePost 保存编辑结果
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	user := currentUser(c)
	input := service.PostInput{
		Title:   c.PostForm("title"),
		Tags:    parseTagsField(c.PostFormArray("tags")),
		Content: c.PostForm("content"),
	}

	if err := a.posts.Edit(id, user.Name, input); err != nil {
		a.fail(c, err)
		return
	}

	flashRedirect(c, "修改成功!", fmt.Sprintf("/p/%d", id))
}

// DeletePost 删除自己的文章
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	user := currentUser(c)
	if err := a.posts.Delete(id, user.Name); err != nil {
		a.fail(c, err)
		return
	}

	flashRedirect(c, "删除成功!", "/")
}

// ReprintPost 以当前用户身份转载文章
func (a *API) ReprintPost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	user := currentUser(c)
	if _, err := a.posts.Reprint(id, *user); err != nil {
		a.fail(c, err)
		return
	}

	flashRedirect(c, "转载成功!", "/")
}

// ShowNotFound 渲染 404 页面,同时兜底所有未匹配路由。
func (a *API) ShowNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "页面不存在"})
}

// visitorID 读取访客 Cookie,首次访问时生成并种下。
func (a *API) visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookieName); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(visitorCookieName, id, visitorCookieMaxAge, "/", "", false, true)
	return id
}

func parseIDParam(c *gin.Context) (uint, error) {
	id := parsePositiveInt(c.Param("id"), 0)
	if id == 0 {
		return 0, apperr.New(apperr.KindNotFound, "NotFound "+c.Param("id"))
	}
	return uint(id), nil
}
