package core

import (
	"errors"
	"fmt"
)

// ErrProviderClosed 提供商已关闭
var ErrProviderClosed = errors.New("provider is closed")

// FetchErrorKind 请求失败的类别
type FetchErrorKind int

const (
	KindTransport FetchErrorKind = iota // 超时、连接失败
	KindStatus                          // 非 2xx 响应
	KindDecode                          // 响应体读取失败；GBK 非法字节按替换字符处理，不属于此类
)

// String 返回类别名称
func (k FetchErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError 一次批量请求的失败
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

// Error 实现 error 接口
func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s error: HTTP %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap 支持 errors.Is / errors.As
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError 创建请求错误
func NewFetchError(kind FetchErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// KindOf 返回错误类别，非 FetchError 时 ok 为 false
func KindOf(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
