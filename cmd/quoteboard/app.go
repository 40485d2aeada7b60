package main

import (
	"context"
	"fmt"
	"io"

	"quoteboard/pkg/config"
	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/logger"
	"quoteboard/pkg/metrics"
	"quoteboard/pkg/provider"
	"quoteboard/pkg/provider/core"
	"quoteboard/pkg/provider/decorators"
	"quoteboard/pkg/provider/sina"
	"quoteboard/pkg/publish"
	"quoteboard/pkg/quote"
	"quoteboard/pkg/scheduler"
	"quoteboard/pkg/server"
	"quoteboard/pkg/timing"
	"quoteboard/pkg/watchlist"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// app 组装好的看板进程
type app struct {
	cfg       *config.Config
	providers *provider.ProviderManager
	board     *dashboard.Board
	refresher *scheduler.Refresher
	server    *server.Server
	redis     *redis.Client
	log       *logrus.Entry
}

// newApp 按配置组装提供商、看板、调度与输出
func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	a := &app{
		cfg:       cfg,
		providers: provider.NewProviderManager(),
		log:       logger.WithComponent("App"),
	}

	market := timing.DefaultMarketTime()
	if err := a.providers.Register("sina", newSinaProvider(cfg, market)); err != nil {
		return nil, err
	}
	quotes, err := a.providers.Get(cfg.Provider.Name)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	opts := []dashboard.Option{
		dashboard.WithIndexCodes(cfg.Dashboard.IndexCodes),
		dashboard.WithMarketTime(market),
		dashboard.WithObserver(collector),
	}

	if cfg.Publish.Enabled {
		client, err := publish.Dial(ctx, cfg.Publish)
		if err != nil {
			return nil, err
		}
		a.redis = client
		opts = append(opts, dashboard.WithObserver(
			publish.NewRedisPublisher(client, cfg.Publish.Stream, cfg.Publish.MaxLen, quotes.Name()),
		))
	}

	a.board = dashboard.NewBoard(quotes, seedWatchlist(cfg.Dashboard.Watchlist, a.log), opts...)

	var refresherOpts []scheduler.Option
	if cfg.Dashboard.Mode == "terminal" {
		renderer := dashboard.NewTerminalRenderer(out)
		refresherOpts = append(refresherOpts, scheduler.WithListener(func(snap dashboard.Snapshot) {
			if err := renderer.Render(snap); err != nil {
				a.log.WithError(err).Warn("终端渲染失败")
			}
		}))
	}

	a.refresher, err = scheduler.NewRefresher(a.board, cfg.Dashboard.RefreshInterval, refresherOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.Dashboard.Mode == "web" {
		gin.SetMode(cfg.Server.Mode)
		a.server = server.New(a.board,
			server.WithAddr(cfg.Server.Addr),
			server.WithReload(a.refresher.RunNow),
			server.WithMetrics(collector.Handler()),
			server.WithRefreshInterval(cfg.Dashboard.RefreshInterval),
		)
	}
	return a, nil
}

// newSinaProvider 创建新浪提供商并按配置套上熔断器
func newSinaProvider(cfg *config.Config, market *timing.MarketTime) core.QuoteProvider {
	base := sina.NewProvider(
		sina.WithBaseURL(cfg.Provider.BaseURL),
		sina.WithReferer(cfg.Provider.Referer),
		sina.WithUserAgent(cfg.Provider.UserAgent),
		sina.WithTimeout(cfg.Provider.Timeout),
		sina.WithParser(quote.NewParser(quote.WithClock(market.Clock()))),
	)

	breaker := decorators.DefaultCircuitBreakerConfig()
	breaker.Name = cfg.Provider.Name
	breaker.Enabled = cfg.Breaker.Enabled
	breaker.ReadyToTrip = cfg.Breaker.ReadyToTrip
	breaker.Timeout = cfg.Breaker.Timeout

	return decorators.NewDecoratorChain().
		AddDecorator(decorators.WithCircuitBreaker(breaker)).
		Apply(base)
}

// seedWatchlist 用配置初始化自选，无效代码记录后忽略
func seedWatchlist(codes []string, log *logrus.Entry) *watchlist.Watchlist {
	w := watchlist.New()
	for _, code := range codes {
		if err := w.Add(code); err != nil {
			log.Warnf("忽略初始自选 %q: %v", code, err)
		}
	}
	return w
}

// Start 启动刷新调度和 Web 服务
func (a *app) Start() error {
	a.refresher.Start()
	if a.server != nil {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("start web server: %w", err)
		}
	}
	a.log.Infof("看板已启动，模式 %s，每 %s 刷新", a.cfg.Dashboard.Mode, a.cfg.Dashboard.RefreshInterval)
	return nil
}

// Close 依次停止服务、调度与外部连接
func (a *app) Close(ctx context.Context) {
	if a.server != nil {
		if err := a.server.Stop(ctx); err != nil {
			a.log.WithError(err).Error("Failed to gracefully shutdown server")
		}
	}
	if a.refresher != nil {
		a.refresher.Stop()
	}
	if err := a.providers.Close(); err != nil {
		a.log.WithError(err).Warn("关闭提供商失败")
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
