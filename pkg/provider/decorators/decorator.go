package decorators

import (
	"context"

	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/quote"
)

// Decorator 装饰器基础接口
type Decorator interface {
	core.QuoteProvider

	// GetBaseProvider 获取被装饰的基础 Provider
	GetBaseProvider() core.QuoteProvider
}

// QuoteBaseDecorator 行情装饰器基础实现，默认直接转发
type QuoteBaseDecorator struct {
	quoteProvider core.QuoteProvider
}

// NewQuoteBaseDecorator 创建行情基础装饰器
func NewQuoteBaseDecorator(quoteProvider core.QuoteProvider) *QuoteBaseDecorator {
	return &QuoteBaseDecorator{quoteProvider: quoteProvider}
}

// Name 实现 Provider 接口
func (d *QuoteBaseDecorator) Name() string {
	return d.quoteProvider.Name()
}

// IsHealthy 实现 Provider 接口
func (d *QuoteBaseDecorator) IsHealthy() bool {
	return d.quoteProvider.IsHealthy()
}

// GetBaseProvider 实现 Decorator 接口
func (d *QuoteBaseDecorator) GetBaseProvider() core.QuoteProvider {
	return d.quoteProvider
}

// FetchQuotes 实现 QuoteProvider 接口
func (d *QuoteBaseDecorator) FetchQuotes(ctx context.Context, codes []string) ([]quote.Record, error) {
	return d.quoteProvider.FetchQuotes(ctx, codes)
}

// FetchQuotesWithRaw 实现 QuoteProvider 接口
func (d *QuoteBaseDecorator) FetchQuotesWithRaw(ctx context.Context, codes []string) ([]quote.Record, string, error) {
	return d.quoteProvider.FetchQuotesWithRaw(ctx, codes)
}

// Close 被装饰的 Provider 可关闭时转发
func (d *QuoteBaseDecorator) Close() error {
	if closable, ok := d.quoteProvider.(core.Closable); ok {
		return closable.Close()
	}
	return nil
}

// DecoratorChain 装饰器链
type DecoratorChain struct {
	decorators []func(core.QuoteProvider) core.QuoteProvider
}

// NewDecoratorChain 创建装饰器链
func NewDecoratorChain() *DecoratorChain {
	return &DecoratorChain{
		decorators: make([]func(core.QuoteProvider) core.QuoteProvider, 0),
	}
}

// AddDecorator 添加装饰器到链中
func (dc *DecoratorChain) AddDecorator(decorator func(core.QuoteProvider) core.QuoteProvider) *DecoratorChain {
	dc.decorators = append(dc.decorators, decorator)
	return dc
}

// Apply 按添加顺序应用装饰器，最后添加的在最外层
func (dc *DecoratorChain) Apply(base core.QuoteProvider) core.QuoteProvider {
	provider := base
	for _, decorator := range dc.decorators {
		provider = decorator(provider)
	}
	return provider
}

var _ core.Closable = (*QuoteBaseDecorator)(nil)
