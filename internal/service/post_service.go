package service

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/goblog/internal/apperr"
	"github.com/goblog/internal/db"
	"gorm.io/gorm"
)

// PageSize 列表页每页文章数
const PageSize = 10

// reprintPrefix 转载文章的标题前缀，只加一次
const reprintPrefix = "[转]"

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title   string
	Tags    []string
	Content string
}

// CommentInput 表示留言表单提交的字段。
type CommentInput struct {
	Name    string
	Email   string
	Website string
	Content string
}

// CommentView 是留言的展示形态。
// ContentHTML 仅在单篇读取路径填充，列表路径只格式化时间。
type CommentView struct {
	Name        string
	Avatar      string
	Email       string
	Website     string
	Time        string
	Content     string
	ContentHTML template.HTML
}

// PostView 是文章的展示形态：markdown 已渲染、时间已格式化。
type PostView struct {
	ID         uint
	Name       string
	Avatar     string
	Time       string
	Title      string
	Tags       []string
	Content    template.HTML
	Comments   []CommentView
	PV         int
	ReprintID  uint
	ReprintNum int
}

// PostSummary 是存档/标签/搜索页使用的投影：只有标题与日期。
type PostSummary struct {
	ID    uint
	Title string
	Time  string
}

// NormalizeTags 统一小写、丢弃空白项并去重，保持首次出现的顺序。
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}
	return normalized
}

// Create 发布一篇新文章，标签持久化前统一规范化。
func (s *PostService) Create(author UserSnapshot, input PostInput) (*db.Post, error) {
	post := db.Post{
		Name:    author.Name,
		Avatar:  author.Avatar,
		Title:   input.Title,
		Content: input.Content,
		PV:      0,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, NormalizeTags(input.Tags))
		if err != nil {
			return err
		}
		post.Tags = tags
		return tx.Create(&post).Error
	}); err != nil {
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}

	return &post, nil
}

// ListPage 按页读取文章，author 为空时不过滤作者。
// 页码从 1 开始，每页 PageSize 条，新文章在前。
func (s *PostService) ListPage(author string, page int) ([]PostView, error) {
	if page < 1 {
		page = 1
	}

	query := s.db.Model(&db.Post{}).
		Preload("Tags").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("comments.created_at asc, comments.id asc")
		})
	if author != "" {
		query = query.Where("name = ?", author)
	}

	var posts []db.Post
	if err := query.
		Order("created_at desc, id desc").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&posts).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, renderPost(&posts[i], false))
	}
	return views, nil
}

// Count 返回匹配的文章总数，供分页计算使用。
func (s *PostService) Count(author string) (int64, error) {
	query := s.db.Model(&db.Post{})
	if author != "" {
		query = query.Where("name = ?", author)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return total, nil
}

// Archive 返回全部文章的标题与日期投影，新文章在前。
func (s *PostService) Archive() ([]PostSummary, error) {
	var posts []db.Post
	if err := s.db.Model(&db.Post{}).
		Select("id", "title", "created_at").
		Order("created_at desc, id desc").
		Find(&posts).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return summarize(posts), nil
}

// Tags 返回所有未删除文章上出现过的标签名。
func (s *PostService) Tags() ([]string, error) {
	var names []string
	if err := s.db.Model(&db.Tag{}).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id AND posts.deleted_at IS NULL").
		Distinct().
		Order("tags.name asc").
		Pluck("tags.name", &names).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return names, nil
}

// PostsByTag 返回携带指定标签的文章投影。
func (s *PostService) PostsByTag(tag string) ([]PostSummary, error) {
	var posts []db.Post
	if err := s.db.Model(&db.Post{}).
		Select("posts.id", "posts.title", "posts.created_at").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.name = ?", tag).
		Order("posts.created_at desc, posts.id desc").
		Find(&posts).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return summarize(posts), nil
}

// Search 对标题做大小写不敏感的子串匹配。
func (s *PostService) Search(keyword string) ([]PostSummary, error) {
	var posts []db.Post
	if err := s.db.Model(&db.Post{}).
		Select("id", "title", "created_at").
		Where("title LIKE ?", "%"+keyword+"%").
		Order("created_at desc, id desc").
		Find(&posts).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return summarize(posts), nil
}

// GetOne 原子地将浏览计数加一并返回渲染后的文章。
// 自增与读取在同一事务内完成。
func (s *PostService) GetOne(id uint) (*PostView, error) {
	var post db.Post
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Post{}).
			Where("id = ?", id).
			UpdateColumn("pv", gorm.Expr("pv + 1"))
		if res.Error != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.KindNotFound, fmt.Sprintf("NotFound %d", id))
		}

		if err := tx.Preload("Tags").
			Preload("Comments", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("comments.created_at asc, comments.id asc")
			}).
			First(&post, id).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	view := renderPost(&post, true)
	return &view, nil
}

// AddComment 将一条留言追加到文章的留言序列。
// 文章不存在与存储出错是两种不同的失败。
func (s *PostService) AddComment(id uint, input CommentInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var matched int64
		if err := tx.Model(&db.Post{}).Where("id = ?", id).Count(&matched).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		if matched == 0 {
			return apperr.New(apperr.KindNotFound, fmt.Sprintf("NotFound %d", id))
		}

		comment := db.Comment{
			PostID:  id,
			Name:    input.Name,
			Avatar:  GravatarURL(input.Email),
			Email:   input.Email,
			Website: input.Website,
			Content: input.Content,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		return nil
	})
}

// GetEdit 读取未渲染的原始文章，按 id 与作者双重匹配。
// 作者不匹配与文章不存在同样返回 NotFound，所有权检查由查询本身承担。
func (s *PostService) GetEdit(id uint, author string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").
		Where("id = ? AND name = ?", id, author).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("NotFound %d", id))
		}
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return &post, nil
}

// Edit 整体替换文章的标题、内容与标签，按 id 与作者双重匹配。
func (s *PostService) Edit(id uint, author string, input PostInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing db.Post
		if err := tx.Where("id = ? AND name = ?", id, author).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, fmt.Sprintf("NotFound %d", id))
			}
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}

		tags, err := resolveTags(tx, NormalizeTags(input.Tags))
		if err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}

		existing.Title = input.Title
		existing.Content = input.Content
		if err := tx.Save(&existing).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		if err := tx.Model(&existing).Association("Tags").Replace(tags); err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		return nil
	})
}

// Delete 删除文章及其留言，按 id 与作者双重匹配。
func (s *PostService) Delete(id uint, author string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND name = ?", id, author).Delete(&db.Post{})
		if res.Error != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.KindNotFound, fmt.Sprintf("NotFound %d", id))
		}
		if err := tx.Where("post_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		return nil
	})
}

// Reprint 转载文章：源文章转载计数加一，再以当前用户身份克隆一份。
// 标题前缀只加一次；克隆不带留言、浏览数归零。计数与克隆在同一事务内。
func (s *PostService) Reprint(id uint, actor UserSnapshot) (*db.Post, error) {
	var clone db.Post
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Post{}).
			Where("id = ?", id).
			UpdateColumn("reprint_num", gorm.Expr("reprint_num + 1"))
		if res.Error != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.KindNotFound, fmt.Sprintf("NotFound %d", id))
		}

		var source db.Post
		if err := tx.Preload("Tags").First(&source, id).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}

		title := source.Title
		if !strings.HasPrefix(title, reprintPrefix) {
			title = reprintPrefix + title
		}

		clone = db.Post{
			Name:       actor.Name,
			Avatar:     actor.Avatar,
			Title:      title,
			Content:    source.Content,
			PV:         0,
			ReprintID:  source.ID,
			ReprintNum: 0,
			Tags:       source.Tags,
		}
		if err := tx.Create(&clone).Error; err != nil {
			return apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &clone, nil
}

// resolveTags 将标签名逐个查找或创建为标签行。
func resolveTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(names))
	for _, name := range names {
		var tag db.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, db.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func renderPost(post *db.Post, renderComments bool) PostView {
	view := PostView{
		ID:         post.ID,
		Name:       post.Name,
		Avatar:     post.Avatar,
		Time:       formatTime(post.CreatedAt),
		Title:      post.Title,
		Content:    RenderMarkdown(post.Content),
		PV:         post.PV,
		ReprintID:  post.ReprintID,
		ReprintNum: post.ReprintNum,
	}

	view.Tags = make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		view.Tags = append(view.Tags, tag.Name)
	}

	view.Comments = make([]CommentView, 0, len(post.Comments))
	for _, comment := range post.Comments {
		cv := CommentView{
			Name:    comment.Name,
			Avatar:  comment.Avatar,
			Email:   comment.Email,
			Website: comment.Website,
			Time:    formatTime(comment.CreatedAt),
			Content: comment.Content,
		}
		if renderComments {
			cv.ContentHTML = RenderMarkdown(comment.Content)
		}
		view.Comments = append(view.Comments, cv)
	}

	return view
}

func summarize(posts []db.Post) []PostSummary {
	summaries := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, PostSummary{
			ID:    post.ID,
			Title: post.Title,
			Time:  formatDate(post.CreatedAt),
		})
	}
	return summaries
}
