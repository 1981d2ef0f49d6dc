// Package scheduler 提供定时任务调度功能，使用 gocron/v2 库.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/feyabloom/studio/pkg/log"
)

const (
	// updateInterval 定义状态更新间隔.
	updateInterval = 10 * time.Second
)

// ErrJobNotFound 任务不存在.
var ErrJobNotFound = errors.New("job not found")

// JobStatus 表示任务的状态类型.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 任务已调度
	StatusRunning   JobStatus = "running"   // 任务正在运行
	StatusError     JobStatus = "error"     // 最近一次执行出错
)

// JobFunc 任务函数，返回的错误会记录在任务信息中.
type JobFunc func(ctx context.Context) error

// JobInfo 表示定时任务的信息，用于可视化和监控.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr,omitempty"`
	Interval    string    `json:"interval,omitempty"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Runs        int       `json:"runs"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Scheduler 是定时任务调度器的实现.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job // 以任务名称为键
	jobInfos  map[string]*JobInfo   // 以任务名称为键
	jobIDs    map[uuid.UUID]string  // 以任务ID为键，映射到名称
	mu        sync.RWMutex
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler 创建一个新的 Scheduler 实例.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	scheduler := &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
		jobInfos:  make(map[string]*JobInfo),
		jobIDs:    make(map[uuid.UUID]string),
		logger:    log.Component("scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}

	// 启动后台任务状态更新器
	go scheduler.jobStatusUpdater()

	return scheduler, nil
}

// AddCron 添加一个基于 cron 表达式的定时任务.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, job JobFunc) error {
	return s.add(ctx, name, gocron.CronJob(cronExpr, false), &JobInfo{CronExpr: cronExpr}, job)
}

// AddInterval 添加一个固定间隔执行的任务.
func (s *Scheduler) AddInterval(ctx context.Context, name string, every time.Duration, job JobFunc) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	return s.add(ctx, name, gocron.DurationJob(every), &JobInfo{Interval: every.String()}, job)
}

func (s *Scheduler) add(ctx context.Context, name string, def gocron.JobDefinition, info *JobInfo, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job with name %s already exists", name)
	}

	j, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(s.wrap(name, job), ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	now := time.Now()
	nextRun, _ := j.NextRun()

	info.ID = j.ID().String()
	info.Name = name
	info.NextRun = nextRun
	info.Status = StatusScheduled
	info.CreatedAt = now
	info.UpdatedAt = now

	s.jobs[name] = j
	s.jobIDs[j.ID()] = name
	s.jobInfos[name] = info

	s.logger.Info().Str("job", name).Str("cron", info.CronExpr).Str("interval", info.Interval).Msg("Added job")

	return nil
}

// wrap 捕获执行状态与 panic.
func (s *Scheduler) wrap(name string, job JobFunc) func(ctx context.Context) {
	return func(ctx context.Context) {
		s.updateJobStatus(name, StatusRunning, "", false)

		var err error

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in job: %v", r)
				s.logger.Error().Str("job", name).Interface("panic", r).Msg("Job panicked")
			}

			if err != nil {
				s.updateJobStatus(name, StatusError, err.Error(), false)
				return
			}

			s.updateJobStatus(name, StatusScheduled, "", true)
		}()

		err = job(ctx)
	}
}

// RunNow 立即执行一次指定任务，不影响原有调度.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return job.RunNow()
}

// RemoveJobByName 通过名称移除任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	if err := s.scheduler.RemoveJob(job.ID()); err != nil {
		return err
	}

	delete(s.jobs, name)
	delete(s.jobInfos, name)
	delete(s.jobIDs, job.ID())

	s.logger.Info().Str("job", name).Msg("Removed job")

	return nil
}

// RemoveJob removes the job with the provided id.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.RLock()
	name, exists := s.jobIDs[id]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	return s.RemoveJobByName(name)
}

// GetJobInfoByName 通过名称获取任务信息.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.jobInfos[name]
	if !exists {
		return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return *info, nil
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting scheduler")
	s.scheduler.Start()
}

// Shutdown 停止调度器并等待运行中的任务结束.
func (s *Scheduler) Shutdown() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()

	return s.scheduler.Shutdown()
}

// StopJobs stops the execution of all jobs.
func (s *Scheduler) StopJobs() error {
	return s.scheduler.StopJobs()
}

// JobsWaitingInQueue number of jobs waiting in Queue.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.scheduler.JobsWaitingInQueue()
}

// GetJobInfos 返回按名称排序的任务信息，用于可视化和监控.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.jobInfos))
	for _, info := range s.jobInfos {
		jobs = append(jobs, *info)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	return jobs
}

// jobStatusUpdater 定期更新任务状态.
func (s *Scheduler) jobStatusUpdater() {
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refreshNextRuns()
		}
	}
}

// refreshNextRuns 刷新所有任务的下次运行时间.
func (s *Scheduler) refreshNextRuns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, job := range s.jobs {
		info := s.jobInfos[name]
		if info == nil {
			continue
		}

		if nextRun, err := job.NextRun(); err == nil {
			info.NextRun = nextRun
		}

		info.UpdatedAt = time.Now()
	}
}

// updateJobStatus 更新任务状态，finished 为 true 时记录一次成功执行.
func (s *Scheduler) updateJobStatus(name string, status JobStatus, errorMsg string, finished bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.jobInfos[name]
	if !exists {
		return
	}

	now := time.Now()

	info.Status = status
	info.Error = errorMsg
	info.UpdatedAt = now

	if status != StatusRunning {
		info.LastRun = now
		info.Runs++
	}

	if finished {
		info.LastSuccess = now
	}
}
