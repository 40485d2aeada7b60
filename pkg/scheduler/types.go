package scheduler

import (
	"context"
	"time"

	"quoteboard/pkg/dashboard"

	"github.com/robfig/cron/v3"
)

// Refreshable 可被定时刷新的看板
type Refreshable interface {
	Refresh(ctx context.Context) dashboard.Snapshot
}

// Listener 每轮刷新完成后的回调
type Listener func(snap dashboard.Snapshot)

// Job 刷新任务的运行状态
type Job struct {
	ID           string
	Name         string
	Schedule     string
	EntryID      cron.EntryID
	Status       JobStatus
	LastRun      *time.Time
	NextRun      *time.Time
	LastDuration time.Duration
	RunCount     int64
	ErrorCount   int64
	LastError    error
}

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusStopped JobStatus = "stopped"
	JobStatusError   JobStatus = "error"
)
