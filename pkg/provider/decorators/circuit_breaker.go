package decorators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quoteboard/pkg/logger"
	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/quote"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreakerProvider 熔断器装饰器
// 上游连续失败后暂停请求，打开期间每个刷新周期直接返回 gobreaker.ErrOpenState
type CircuitBreakerProvider struct {
	*QuoteBaseDecorator

	cb     *gobreaker.CircuitBreaker
	config *CircuitBreakerConfig
	log    *logrus.Entry

	mu    sync.RWMutex
	stats CircuitBreakerStats
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Name        string        `yaml:"name"`          // 熔断器名称
	MaxRequests uint32        `yaml:"max_requests"`  // 半开状态下的最大请求数
	Interval    time.Duration `yaml:"interval"`      // 统计窗口时间
	Timeout     time.Duration `yaml:"timeout"`       // 熔断器打开后的超时时间
	ReadyToTrip uint32        `yaml:"ready_to_trip"` // 触发熔断的连续失败次数
	Enabled     bool          `yaml:"enabled"`       // 是否启用熔断器
}

// CircuitBreakerStats 熔断器统计信息
type CircuitBreakerStats struct {
	TotalRequests     int64     `json:"total_requests"`
	SuccessfulRequest int64     `json:"successful_requests"`
	FailedRequests    int64     `json:"failed_requests"`
	LastFailure       time.Time `json:"last_failure"`
}

// DefaultCircuitBreakerConfig 默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:        "QuoteProvider",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: 5,
		Enabled:     true,
	}
}

// NewCircuitBreakerProvider 创建熔断器装饰器
func NewCircuitBreakerProvider(quoteProvider core.QuoteProvider, config *CircuitBreakerConfig) *CircuitBreakerProvider {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}

	log := logger.WithComponent("CircuitBreaker")
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ReadyToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("熔断器 %s 状态从 %v 变更为 %v", name, from, to)
		},
	}

	return &CircuitBreakerProvider{
		QuoteBaseDecorator: NewQuoteBaseDecorator(quoteProvider),
		cb:                 gobreaker.NewCircuitBreaker(settings),
		config:             config,
		log:                log,
	}
}

// Name 返回装饰器名称
func (c *CircuitBreakerProvider) Name() string {
	return fmt.Sprintf("CircuitBreaker(%s)", c.quoteProvider.Name())
}

// IsHealthy 熔断器打开时视为不健康
func (c *CircuitBreakerProvider) IsHealthy() bool {
	if !c.config.Enabled {
		return c.quoteProvider.IsHealthy()
	}
	return c.cb.State() != gobreaker.StateOpen && c.quoteProvider.IsHealthy()
}

// FetchQuotes 通过熔断器获取行情
func (c *CircuitBreakerProvider) FetchQuotes(ctx context.Context, codes []string) ([]quote.Record, error) {
	records, _, err := c.FetchQuotesWithRaw(ctx, codes)
	return records, err
}

// FetchQuotesWithRaw 通过熔断器获取行情和原始响应
func (c *CircuitBreakerProvider) FetchQuotesWithRaw(ctx context.Context, codes []string) ([]quote.Record, string, error) {
	if !c.config.Enabled {
		return c.quoteProvider.FetchQuotesWithRaw(ctx, codes)
	}

	c.mu.Lock()
	c.stats.TotalRequests++
	c.mu.Unlock()

	type result struct {
		records []quote.Record
		raw     string
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		records, raw, err := c.quoteProvider.FetchQuotesWithRaw(ctx, codes)
		if err != nil {
			return nil, err
		}
		return result{records: records, raw: raw}, nil
	})

	c.handleResult(err)

	if err != nil {
		return []quote.Record{}, "", err
	}

	res, ok := out.(result)
	if !ok {
		return []quote.Record{}, "", fmt.Errorf("熔断器返回数据类型错误")
	}
	return res.records, res.raw, nil
}

// handleResult 更新统计信息
func (c *CircuitBreakerProvider) handleResult(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.stats.FailedRequests++
		c.stats.LastFailure = time.Now()
	} else {
		c.stats.SuccessfulRequest++
	}
}

// GetState 获取熔断器当前状态
func (c *CircuitBreakerProvider) GetState() gobreaker.State {
	return c.cb.State()
}

// GetStats 获取统计信息副本
func (c *CircuitBreakerProvider) GetStats() CircuitBreakerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// GetStatus 获取熔断器状态信息
func (c *CircuitBreakerProvider) GetStatus() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := c.cb.Counts()

	return map[string]interface{}{
		"decorator_type": "CircuitBreaker",
		"base_provider":  c.quoteProvider.Name(),
		"enabled":        c.config.Enabled,
		"state":          c.cb.State().String(),
		"counts": map[string]interface{}{
			"requests":             counts.Requests,
			"consecutive_failures": counts.ConsecutiveFailures,
		},
		"stats": map[string]interface{}{
			"total_requests":      c.stats.TotalRequests,
			"successful_requests": c.stats.SuccessfulRequest,
			"failed_requests":     c.stats.FailedRequests,
			"last_failure":        c.stats.LastFailure,
		},
	}
}

// IsOpen 检查熔断器是否处于打开状态
func (c *CircuitBreakerProvider) IsOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}

// WithCircuitBreaker 返回可加入 DecoratorChain 的熔断器装饰函数
func WithCircuitBreaker(config *CircuitBreakerConfig) func(core.QuoteProvider) core.QuoteProvider {
	return func(p core.QuoteProvider) core.QuoteProvider {
		return NewCircuitBreakerProvider(p, config)
	}
}

var _ Decorator = (*CircuitBreakerProvider)(nil)
