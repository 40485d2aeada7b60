package core

import (
	"context"

	"quoteboard/pkg/quote"
)

// QuoteProvider 实时行情提供商接口
type QuoteProvider interface {
	Provider

	// FetchQuotes 一次请求获取一批代码的行情
	// codes 可以是裸代码 (600519) 或带前缀的代码 (sh000001, rt_hkHSTECH)
	// 请求失败时返回空结果和 *FetchError
	FetchQuotes(ctx context.Context, codes []string) ([]quote.Record, error)

	// FetchQuotesWithRaw 获取行情和解码后的原始响应，用于调试
	FetchQuotesWithRaw(ctx context.Context, codes []string) ([]quote.Record, string, error)
}
