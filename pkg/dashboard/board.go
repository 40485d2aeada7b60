package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"quoteboard/pkg/logger"
	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/quote"
	"quoteboard/pkg/timing"
	"quoteboard/pkg/watchlist"

	"github.com/sirupsen/logrus"
)

// DefaultIndexCodes 默认指数：上证指数、深证成指、创业板指、恒生科技
var DefaultIndexCodes = []string{"sh000001", "sz399001", "sz399006", quote.CodeHSTECH}

// Snapshot 一轮刷新后的看板状态
type Snapshot struct {
	Indices   []quote.Record `json:"indices"`
	Watch     []quote.Record `json:"watchlist"`
	Codes     []string       `json:"codes"`
	Warnings  []string       `json:"warnings,omitempty"`
	Session   timing.Session `json:"session"`
	UpdatedAt time.Time      `json:"updated_at"`
	Cycle     int64          `json:"cycle"`
}

// Ready 是否已完成至少一轮刷新
func (s Snapshot) Ready() bool {
	return s.Cycle > 0
}

// RefreshStats 单轮刷新统计
type RefreshStats struct {
	Duration time.Duration
	Errors   []error
}

// Observer 接收每轮刷新结果
type Observer interface {
	OnRefresh(ctx context.Context, snap Snapshot, stats RefreshStats)
}

// Board 看板会话，持有自选列表与最近一次快照
type Board struct {
	provider   core.QuoteProvider
	watch      *watchlist.Watchlist
	market     *timing.MarketTime
	indexCodes []string
	observers  []Observer
	log        *logrus.Entry

	refreshMu sync.Mutex
	mu        sync.RWMutex
	snapshot  Snapshot
}

// Option 看板选项
type Option func(*Board)

// WithIndexCodes 设置指数代码
func WithIndexCodes(codes []string) Option {
	return func(b *Board) {
		b.indexCodes = append([]string(nil), codes...)
	}
}

// WithMarketTime 设置交易时段时钟
func WithMarketTime(mt *timing.MarketTime) Option {
	return func(b *Board) {
		if mt != nil {
			b.market = mt
		}
	}
}

// WithObserver 注册刷新观察者
func WithObserver(o Observer) Option {
	return func(b *Board) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// NewBoard 创建看板
func NewBoard(provider core.QuoteProvider, watch *watchlist.Watchlist, opts ...Option) *Board {
	if watch == nil {
		watch = watchlist.New()
	}
	b := &Board{
		provider:   provider,
		watch:      watch,
		market:     timing.DefaultMarketTime(),
		indexCodes: append([]string(nil), DefaultIndexCodes...),
		log:        logger.WithComponent("Board"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Watchlist 返回看板持有的自选列表
func (b *Board) Watchlist() *watchlist.Watchlist {
	return b.watch
}

// ProviderName 返回行情提供商名称
func (b *Board) ProviderName() string {
	return b.provider.Name()
}

// ProviderHealthy 行情提供商是否可用
func (b *Board) ProviderHealthy() bool {
	return b.provider.IsHealthy()
}

// IndexCodes 返回指数代码副本
func (b *Board) IndexCodes() []string {
	return append([]string(nil), b.indexCodes...)
}

// Add 添加自选代码，成功时返回提示文案
func (b *Board) Add(code string) (string, error) {
	code = strings.TrimSpace(code)
	if err := b.watch.Add(code); err != nil {
		return "", err
	}
	b.log.Infof("添加自选 %s", code)
	return fmt.Sprintf(MsgAdded, code), nil
}

// Remove 批量移除自选代码
func (b *Board) Remove(codes ...string) int {
	n := b.watch.Remove(codes...)
	if n > 0 {
		b.log.Infof("移除自选 %d 个", n)
	}
	return n
}

// Snapshot 返回最近一次快照
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot
}

// Refresh 拉取指数与自选行情并替换快照
// 获取失败时对应区域为空并附带警告，不返回错误
func (b *Board) Refresh(ctx context.Context) Snapshot {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	start := time.Now()
	codes := b.watch.Codes()
	snap := Snapshot{
		Codes:   codes,
		Session: b.market.Session(),
	}

	var errs []error
	indices, err := b.fetch(ctx, b.indexCodes)
	if err != nil {
		errs = append(errs, err)
		snap.Warnings = append(snap.Warnings, Warning("指数", err))
	}
	watch, err := b.fetch(ctx, codes)
	if err != nil {
		errs = append(errs, err)
		snap.Warnings = append(snap.Warnings, Warning("自选", err))
	}
	snap.Indices = indices
	snap.Watch = watch
	snap.UpdatedAt = b.market.Now()

	b.mu.Lock()
	snap.Cycle = b.snapshot.Cycle + 1
	b.snapshot = snap
	b.mu.Unlock()

	stats := RefreshStats{Duration: time.Since(start), Errors: errs}
	b.log.WithFields(logrus.Fields{
		"cycle":    snap.Cycle,
		"indices":  len(indices),
		"watch":    len(watch),
		"errors":   len(errs),
		"duration": stats.Duration.Round(time.Millisecond),
	}).Debug("看板刷新完成")

	for _, o := range b.observers {
		o.OnRefresh(ctx, snap, stats)
	}
	return snap
}

func (b *Board) fetch(ctx context.Context, codes []string) ([]quote.Record, error) {
	if len(codes) == 0 {
		return []quote.Record{}, nil
	}
	records, err := b.provider.FetchQuotes(ctx, codes)
	if err != nil {
		b.log.WithError(err).Warn("行情获取失败")
		return []quote.Record{}, err
	}
	if records == nil {
		records = []quote.Record{}
	}
	return records, nil
}

// Warning 把获取错误转为看板警告文案
func Warning(section string, err error) string {
	var fe *core.FetchError
	if errors.As(err, &fe) {
		switch fe.Kind {
		case core.KindTransport:
			return fmt.Sprintf("%s网络请求失败: %v", section, fe.Err)
		case core.KindStatus:
			return fmt.Sprintf("%s行情接口返回状态码 %d", section, fe.StatusCode)
		case core.KindDecode:
			return fmt.Sprintf("%s行情数据解析失败: %v", section, fe.Err)
		}
	}
	return fmt.Sprintf("%s行情获取失败: %v", section, err)
}
