package db

import "gorm.io/gorm"

// Post 定义了文章模型
// Name/Avatar 冗余存储作者信息，转载时会被替换为转载者
// PV 浏览计数随单篇读取原子自增
// ReprintID 非零表示本文转载自该 ID 对应的源文章
type Post struct {
	gorm.Model
	Name       string `gorm:"index;not null"`
	Avatar     string
	Title      string `gorm:"index"`
	Content    string
	PV         int       `gorm:"column:pv;not null;default:0"`
	ReprintID  uint      `gorm:"not null;default:0"`
	ReprintNum int       `gorm:"not null;default:0"`
	Tags       []Tag     `gorm:"many2many:post_tags;"`
	Comments   []Comment `gorm:"constraint:OnDelete:CASCADE"`
}

// Comment 定义了留言模型，只追加、不修改
type Comment struct {
	gorm.Model
	PostID  uint `gorm:"index;not null"`
	Name    string
	Avatar  string
	Email   string
	Website string
	Content string
}
