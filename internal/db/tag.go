package db

import "gorm.io/gorm"

// Tag 定义了标签模型，名称持久化前统一小写去重
type Tag struct {
	gorm.Model
	Name  string `gorm:"unique;not null"`
	Posts []Post `gorm:"many2many:post_tags;"`
}
