package apperr

import (
	"errors"
	"fmt"
)

// Kind 划分请求处理过程中可能出现的错误类别。
// 错误翻译中间件根据类别决定重定向行为。
type Kind int

const (
	// KindServer 未分类的内部错误
	KindServer Kind = iota
	// KindRequest 非法或被拒绝的输入，例如密码不一致、用户名重复
	KindRequest
	// KindNotFound 引用的实体不存在，或不属于当前用户
	KindNotFound
	// KindDB 底层存储操作失败
	KindDB
)

// Error 携带错误类别与面向用户的提示信息。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建一个指定类别的错误。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误并附加类别与提示信息。
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 提取错误的类别，无法识别时归为 KindServer。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// MessageOf 提取面向用户的提示信息，无法识别时回退到 err.Error()。
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
