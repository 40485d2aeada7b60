package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"quoteboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	jobName        = "refresh"
	minInterval    = time.Second
	defaultTimeout = 30 * time.Second
)

// Refresher 以固定间隔驱动看板刷新
// 定时触发遇到未结束的周期时跳过；RunNow 会等待当前周期结束后再刷新一轮
type Refresher struct {
	cron      *cron.Cron
	board     Refreshable
	listeners []Listener
	timeout   time.Duration
	job       *Job
	runMu     sync.Mutex // 串行化刷新周期
	mu        sync.RWMutex
	logger    *logrus.Entry
	ctx       context.Context
	cancel    context.CancelFunc
}

// Option Refresher 选项
type Option func(*Refresher)

// WithListener 注册刷新回调
func WithListener(l Listener) Option {
	return func(r *Refresher) {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
}

// WithTimeout 设置单轮刷新超时
func WithTimeout(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Schedule 返回刷新间隔对应的 cron 表达式
func Schedule(interval time.Duration) string {
	return "@every " + interval.String()
}

// NewRefresher 创建刷新调度器
func NewRefresher(board Refreshable, interval time.Duration, opts ...Option) (*Refresher, error) {
	if board == nil {
		return nil, errors.New("看板不能为空")
	}
	if interval < minInterval {
		return nil, fmt.Errorf("刷新间隔不能小于 %s: %s", minInterval, interval)
	}

	log := logger.WithComponent("Refresher")
	ctx, cancel := context.WithCancel(context.Background())

	r := &Refresher{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		board:   board,
		timeout: defaultTimeout,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
		job: &Job{
			ID:       uuid.New().String(),
			Name:     jobName,
			Schedule: Schedule(interval),
			Status:   JobStatusPending,
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	entryID, err := r.cron.AddFunc(r.job.Schedule, r.tick)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("无效的调度表达式 '%s': %w", r.job.Schedule, err)
	}
	r.job.EntryID = entryID
	return r, nil
}

// Start 立即刷新一次，然后启动定时调度
func (r *Refresher) Start() {
	r.RunNow()
	r.cron.Start()

	r.mu.Lock()
	r.updateNextRun()
	r.mu.Unlock()

	r.logger.Infof("刷新调度已启动 (%s)", r.job.Schedule)
}

// Stop 停止调度并等待正在执行的刷新结束
func (r *Refresher) Stop() {
	r.cancel()
	ctx := r.cron.Stop()

	select {
	case <-ctx.Done():
		r.logger.Info("刷新调度已停止")
	case <-time.After(30 * time.Second):
		r.logger.Warn("刷新调度停止超时")
	}

	r.mu.Lock()
	r.job.Status = JobStatusStopped
	r.job.NextRun = nil
	r.mu.Unlock()
}

// RunNow 执行一轮完整刷新，用于自选变更后重新加载
// 有周期正在执行时阻塞等待，返回时快照已包含调用前的自选变更
func (r *Refresher) RunNow() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	r.execute()
}

// tick 定时触发，上一轮未结束时跳过
func (r *Refresher) tick() {
	if !r.runMu.TryLock() {
		r.logger.Debug("刷新正在进行，跳过本次定时执行")
		return
	}
	defer r.runMu.Unlock()
	r.execute()
}

// Job 返回任务状态副本
func (r *Refresher) Job() Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.job
}

// execute 执行一轮刷新，需要持有 runMu
func (r *Refresher) execute() {
	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return
	}
	r.job.Status = JobStatusRunning
	now := time.Now()
	r.job.LastRun = &now
	r.job.RunCount++
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	snap := r.board.Refresh(ctx)

	r.mu.Lock()
	r.job.LastDuration = time.Since(now)
	if len(snap.Warnings) > 0 {
		r.job.Status = JobStatusError
		r.job.ErrorCount++
		r.job.LastError = errors.New(strings.Join(snap.Warnings, "; "))
		r.logger.WithError(r.job.LastError).Warnf("第 %d 轮刷新有警告", snap.Cycle)
	} else {
		r.job.Status = JobStatusPending
		r.job.LastError = nil
	}
	r.updateNextRun()
	r.mu.Unlock()

	for _, l := range r.listeners {
		l(snap)
	}
}

// updateNextRun 需要持有锁
func (r *Refresher) updateNextRun() {
	entry := r.cron.Entry(r.job.EntryID)
	if entry.Valid() && !entry.Next.IsZero() {
		next := entry.Next
		r.job.NextRun = &next
	}
}
