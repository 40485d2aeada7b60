package decorators

import (
	"context"
	"errors"
	"testing"
	"time"

	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/quote"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockQuoteProvider 用于测试的模拟 Provider
type MockQuoteProvider struct {
	name      string
	healthy   bool
	fail      bool
	callCount int
	lastCodes []string
}

func NewMockQuoteProvider(name string) *MockQuoteProvider {
	return &MockQuoteProvider{name: name, healthy: true}
}

func (m *MockQuoteProvider) Name() string    { return m.name }
func (m *MockQuoteProvider) IsHealthy() bool { return m.healthy }

func (m *MockQuoteProvider) FetchQuotes(ctx context.Context, codes []string) ([]quote.Record, error) {
	records, _, err := m.FetchQuotesWithRaw(ctx, codes)
	return records, err
}

func (m *MockQuoteProvider) FetchQuotesWithRaw(ctx context.Context, codes []string) ([]quote.Record, string, error) {
	m.callCount++
	m.lastCodes = codes
	if m.fail {
		return []quote.Record{}, "", core.NewFetchError(core.KindTransport, errors.New("模拟错误"))
	}
	records := make([]quote.Record, len(codes))
	for i, code := range codes {
		records[i] = quote.Record{Code: code, Name: "测试股票", Price: 10.5}
	}
	return records, "mock_raw_data", nil
}

func TestQuoteBaseDecorator_Forwarding(t *testing.T) {
	mock := NewMockQuoteProvider("TestProvider")
	d := NewQuoteBaseDecorator(mock)

	assert.Equal(t, "TestProvider", d.Name())
	assert.True(t, d.IsHealthy())
	assert.Same(t, mock, d.GetBaseProvider())

	data, raw, err := d.FetchQuotesWithRaw(context.Background(), []string{"600000", "000001"})
	require.NoError(t, err)
	assert.Len(t, data, 2)
	assert.Equal(t, "mock_raw_data", raw)
	assert.Equal(t, []string{"600000", "000001"}, mock.lastCodes)
}

func TestDecoratorChain_Order(t *testing.T) {
	mock := NewMockQuoteProvider("BaseProvider")
	cfg := DefaultCircuitBreakerConfig()

	decorated := NewDecoratorChain().
		AddDecorator(WithCircuitBreaker(cfg)).
		AddDecorator(func(p core.QuoteProvider) core.QuoteProvider { return NewQuoteBaseDecorator(p) }).
		Apply(mock)

	outer, ok := decorated.(*QuoteBaseDecorator)
	require.True(t, ok, "最后添加的装饰器应在最外层")
	inner, ok := outer.GetBaseProvider().(*CircuitBreakerProvider)
	require.True(t, ok)
	assert.Same(t, mock, inner.GetBaseProvider())
	assert.Equal(t, "CircuitBreaker(BaseProvider)", inner.Name())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	mock := NewMockQuoteProvider("sina")
	mock.fail = true

	cb := NewCircuitBreakerProvider(mock, &CircuitBreakerConfig{
		Name:        "test",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: 3,
		Enabled:     true,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		data, err := cb.FetchQuotes(ctx, []string{"600000"})
		assert.Error(t, err)
		assert.Empty(t, data)
	}

	assert.True(t, cb.IsOpen())
	assert.False(t, cb.IsHealthy())
	assert.Equal(t, 3, mock.callCount)

	// 打开状态下不再请求上游
	data, err := cb.FetchQuotes(ctx, []string{"600000"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NotNil(t, data)
	assert.Empty(t, data)
	assert.Equal(t, 3, mock.callCount)

	stats := cb.GetStats()
	assert.Equal(t, int64(4), stats.TotalRequests)
	assert.Equal(t, int64(4), stats.FailedRequests)
	assert.Equal(t, "open", cb.GetStatus()["state"])
}

func TestCircuitBreaker_SuccessKeepsClosed(t *testing.T) {
	mock := NewMockQuoteProvider("sina")
	cb := NewCircuitBreakerProvider(mock, nil)

	data, raw, err := cb.FetchQuotesWithRaw(context.Background(), []string{"600000"})
	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.Equal(t, "mock_raw_data", raw)
	assert.Equal(t, gobreaker.StateClosed, cb.GetState())
	assert.Equal(t, int64(1), cb.GetStats().SuccessfulRequest)
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	mock := NewMockQuoteProvider("sina")
	mock.fail = true
	cfg := DefaultCircuitBreakerConfig()
	cfg.Enabled = false
	cfg.ReadyToTrip = 1
	cb := NewCircuitBreakerProvider(mock, cfg)

	for i := 0; i < 3; i++ {
		_, err := cb.FetchQuotes(context.Background(), []string{"600000"})
		assert.Error(t, err)
	}
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 3, mock.callCount)
	assert.Zero(t, cb.GetStats().TotalRequests)
}

type closableMock struct {
	*MockQuoteProvider
	closed bool
}

func (c *closableMock) Close() error {
	c.closed = true
	return nil
}

func TestQuoteBaseDecorator_CloseForwards(t *testing.T) {
	inner := &closableMock{MockQuoteProvider: NewMockQuoteProvider("sina")}
	decorated := NewDecoratorChain().AddDecorator(WithCircuitBreaker(nil)).Apply(inner)

	closable, ok := decorated.(core.Closable)
	require.True(t, ok)
	require.NoError(t, closable.Close())
	assert.True(t, inner.closed)

	// 不可关闭的 Provider 直接返回 nil
	assert.NoError(t, NewQuoteBaseDecorator(NewMockQuoteProvider("x")).Close())
}
