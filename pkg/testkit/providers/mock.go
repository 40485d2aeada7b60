package providers

import (
	"context"
	"sync"
	"time"

	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/quote"
)

// MockProvider 内存行情提供商，供看板、调度与服务测试使用
type MockProvider struct {
	mu       sync.RWMutex
	quotes   map[string]quote.Record
	err      error
	delay    time.Duration
	healthy  bool
	recorder *CallRecorder
}

// CallRecord 调用记录
type CallRecord struct {
	Timestamp time.Time
	Codes     []string
	Rows      int
	Error     error
}

// CallRecorder 调用记录器
type CallRecorder struct {
	mu    sync.RWMutex
	calls []CallRecord
}

func (r *CallRecorder) record(c CallRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls 返回调用记录副本
func (r *CallRecorder) Calls() []CallRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CallRecord, len(r.calls))
	copy(out, r.calls)
	return out
}

// NewMockProvider 创建 Mock Provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		quotes:   make(map[string]quote.Record),
		healthy:  true,
		recorder: &CallRecorder{},
	}
}

// NewRecord 按昨收价与现价构造一条行情
func NewRecord(code, name string, prevClose, current float64) quote.Record {
	apiCode, _ := quote.Resolve(code)
	market, _ := quote.MarketOf(apiCode)
	change := quote.ComputeChange(prevClose, current)
	return quote.Record{
		Code:          code,
		APICode:       apiCode,
		Market:        market,
		Name:          name,
		Price:         change.Price,
		Change:        change.Amount,
		ChangePercent: change.Percent,
		Open:          prevClose,
		High:          change.Price,
		Low:           prevClose,
		PrevClose:     prevClose,
		UpdateTime:    "15:00:00",
	}
}

// SetQuote 设置某代码返回的行情
func (m *MockProvider) SetQuote(r quote.Record) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[r.Code] = r
	return m
}

// SetError 设置后续调用返回的错误，nil 表示恢复
func (m *MockProvider) SetError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// SetDelay 设置每次调用的延迟
func (m *MockProvider) SetDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// SetHealthy 设置健康状态
func (m *MockProvider) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
}

// Calls 返回调用记录
func (m *MockProvider) Calls() []CallRecord {
	return m.recorder.Calls()
}

// CallCount 返回调用次数
func (m *MockProvider) CallCount() int {
	return len(m.recorder.Calls())
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// FetchQuotes 按输入顺序返回已设置的行情，未设置的代码跳过
func (m *MockProvider) FetchQuotes(ctx context.Context, codes []string) ([]quote.Record, error) {
	records, _, err := m.FetchQuotesWithRaw(ctx, codes)
	return records, err
}

// FetchQuotesWithRaw 同 FetchQuotes，原始响应为空
func (m *MockProvider) FetchQuotesWithRaw(ctx context.Context, codes []string) ([]quote.Record, string, error) {
	m.mu.RLock()
	delay, err := m.delay, m.err
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			err = core.NewFetchError(core.KindTransport, ctx.Err())
		}
	}

	call := CallRecord{Timestamp: time.Now(), Codes: append([]string(nil), codes...)}
	if err != nil {
		call.Error = err
		m.recorder.record(call)
		return []quote.Record{}, "", err
	}

	m.mu.RLock()
	records := make([]quote.Record, 0, len(codes))
	for _, code := range codes {
		if r, ok := m.quotes[code]; ok {
			records = append(records, r)
		}
	}
	m.mu.RUnlock()

	call.Rows = len(records)
	m.recorder.record(call)
	return records, "", nil
}

var _ core.QuoteProvider = (*MockProvider)(nil)
