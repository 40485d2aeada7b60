package core

import "time"

// Provider 行情提供商基础接口
type Provider interface {
	// Name 返回提供商名称，用于标识和日志记录
	Name() string

	// IsHealthy 检查提供商健康状态
	// 返回 true 表示提供商可以正常工作
	IsHealthy() bool
}

// Configurable 可配置接口
type Configurable interface {
	// SetTimeout 设置请求超时时间
	SetTimeout(timeout time.Duration)
}

// Closable 可关闭接口
// 需要清理资源的提供商应实现此接口
type Closable interface {
	// Close 关闭提供商，清理资源
	Close() error
}
