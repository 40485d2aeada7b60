package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"quoteboard/pkg/logger"
	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/quote"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "http://hq.sinajs.cn/list="
	defaultReferer = "https://finance.sina.com.cn/"
	defaultTimeout = 5 * time.Second
)

// Provider 新浪行情数据提供商
type Provider struct {
	httpClient *http.Client
	parser     *quote.Parser
	userAgent  string
	referer    string
	baseURL    string
	closed     atomic.Bool
	log        *logrus.Entry
}

// Option Provider 选项
type Option func(*Provider)

// WithBaseURL 设置行情接口地址，形如 http://hq.sinajs.cn/list=
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithReferer 设置 Referer 请求头
func WithReferer(referer string) Option {
	return func(p *Provider) {
		if referer != "" {
			p.referer = referer
		}
	}
}

// WithUserAgent 设置用户代理
func WithUserAgent(ua string) Option {
	return func(p *Provider) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout > 0 {
			p.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithParser 替换行情解析器
func WithParser(parser *quote.Parser) Option {
	return func(p *Provider) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// NewProvider 创建新浪数据提供商
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
			Timeout: defaultTimeout,
		},
		parser:    quote.NewParser(),
		userAgent: "QuoteBoard/1.0",
		referer:   defaultReferer,
		baseURL:   defaultBaseURL,
		log:       logger.WithComponent("SinaProvider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name 返回提供商名称
func (p *Provider) Name() string {
	return "sina"
}

// IsHealthy 关闭后视为不健康
func (p *Provider) IsHealthy() bool {
	return p.httpClient != nil && !p.closed.Load()
}

// SetTimeout 设置请求超时时间
func (p *Provider) SetTimeout(timeout time.Duration) {
	p.httpClient.Timeout = timeout
}

// Close 关闭提供商，清理资源
func (p *Provider) Close() error {
	p.closed.Store(true)
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
	return nil
}

// FetchQuotes 获取行情数据
func (p *Provider) FetchQuotes(ctx context.Context, codes []string) ([]quote.Record, error) {
	result, _, err := p.FetchQuotesWithRaw(ctx, codes)
	return result, err
}

// FetchQuotesWithRaw 获取行情数据和解码后的原始响应
func (p *Provider) FetchQuotesWithRaw(ctx context.Context, codes []string) ([]quote.Record, string, error) {
	res := quote.ResolveCodes(codes)
	if res.Empty() {
		return []quote.Record{}, "", nil
	}
	if p.closed.Load() {
		return []quote.Record{}, "", core.NewFetchError(core.KindTransport, core.ErrProviderClosed)
	}

	url := p.buildURL(res.Codes)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return []quote.Record{}, "", core.NewFetchError(core.KindTransport, fmt.Errorf("create request failed: %w", err))
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Referer", p.referer)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WithError(err).Warn("行情请求失败")
		return []quote.Record{}, "", core.NewFetchError(core.KindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.Warnf("行情接口返回状态码 %d", resp.StatusCode)
		return []quote.Record{}, "", &core.FetchError{Kind: core.KindStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []quote.Record{}, "", core.NewFetchError(core.KindDecode, fmt.Errorf("read response failed: %w", err))
	}

	text, err := quote.DecodeGBK(body)
	if err != nil {
		return []quote.Record{}, "", core.NewFetchError(core.KindDecode, fmt.Errorf("decode GBK failed: %w", err))
	}

	if quote.HasReplacement(text) {
		p.log.Warn("响应包含无法解码的 GBK 字节，已替换为 U+FFFD")
	}

	records := p.parser.Parse(text, res)
	p.log.WithFields(logrus.Fields{
		"codes":    len(res.Codes),
		"records":  len(records),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("行情获取完成")

	return records, text, nil
}

// buildURL 构建新浪行情URL
func (p *Provider) buildURL(apiCodes []string) string {
	return p.baseURL + strings.Join(apiCodes, ",")
}

// 确保 Provider 实现了所需的接口
var _ core.QuoteProvider = (*Provider)(nil)
var _ core.Configurable = (*Provider)(nil)
var _ core.Closable = (*Provider)(nil)
