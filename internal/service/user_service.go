package service

import (
	"errors"

	"github.com/goblog/internal/apperr"
	"github.com/goblog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService wraps user related database operations.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// UserSnapshot 是写入会话的用户快照，不含密码。
type UserSnapshot struct {
	Name   string
	Email  string
	Avatar string
}

// RegisterInput 表示注册表单提交的字段。
type RegisterInput struct {
	Name           string
	Password       string
	PasswordRepeat string
	Email          string
}

// Register 校验并创建新用户，密码以 bcrypt 哈希存储。
// 校验失败在任何写入发生前以 RequestError 返回。
func (s *UserService) Register(input RegisterInput) (UserSnapshot, error) {
	if input.Password != input.PasswordRepeat {
		return UserSnapshot{}, apperr.New(apperr.KindRequest, "两次输入的密码不一致!")
	}

	existing, err := s.Get(input.Name)
	if err != nil {
		return UserSnapshot{}, err
	}
	if existing != nil {
		return UserSnapshot{}, apperr.New(apperr.KindRequest, "用户已存在!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserSnapshot{}, apperr.Wrap(apperr.KindServer, "密码处理失败", err)
	}

	user := db.User{
		Name:     input.Name,
		Password: string(hashed),
		Email:    input.Email,
		Avatar:   GravatarURL(input.Email),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return UserSnapshot{}, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}

	return UserSnapshot{Name: user.Name, Email: user.Email, Avatar: user.Avatar}, nil
}

// Authenticate 按用户名取出用户并校验密码，成功时返回不含密码的快照。
func (s *UserService) Authenticate(name, password string) (UserSnapshot, error) {
	user, err := s.Get(name)
	if err != nil {
		return UserSnapshot{}, err
	}
	if user == nil {
		return UserSnapshot{}, apperr.New(apperr.KindRequest, "用户不存在!")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return UserSnapshot{}, apperr.New(apperr.KindRequest, "密码错误!")
	}

	return UserSnapshot{Name: user.Name, Email: user.Email, Avatar: user.Avatar}, nil
}

// Get 按用户名精确查找，不存在时返回 nil 而非错误，由调用方决定缺失的含义。
func (s *UserService) Get(name string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindDB, "数据库操作失败", err)
	}
	return &user, nil
}
