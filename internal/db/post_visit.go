package db

import "gorm.io/gorm"

// PostVisit 记录单篇文章的访问日志
// VisitorID 来自浏览器侧的访客 Cookie，与登录态无关
type PostVisit struct {
	gorm.Model
	PostID    uint   `gorm:"index;not null"`
	VisitorID string `gorm:"index"`
}
