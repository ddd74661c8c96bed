package db

import "gorm.io/gorm"

// User 定义了用户模型。
// Password 存储 bcrypt 哈希，注册后不再更新。
type User struct {
	gorm.Model
	Name     string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Email    string
	Avatar   string
}
