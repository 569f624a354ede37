// Package jobs 提供后台周期任务调度
// 每个任务独立goroutine按固定间隔触发，失败只记日志不中断调度
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bingfang/bingfang/pkg/logger"
)

// Job 周期任务定义
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Result 单次任务执行结果
type Result struct {
	Job      string        `json:"job"`
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Runner 周期任务调度器
type Runner struct {
	mu      sync.Mutex
	jobs    []Job
	results chan Result
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	log     *logger.HospitalLogger
}

// NewRunner 创建调度器
// resultBuffer 为结果通道容量，通道满时丢弃新结果
func NewRunner(resultBuffer int) *Runner {
	if resultBuffer <= 0 {
		resultBuffer = 64
	}
	return &Runner{
		results: make(chan Result, resultBuffer),
		log:     logger.NewHospitalLogger(),
	}
}

// Add 注册周期任务，必须在 Start 之前调用
func (r *Runner) Add(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("调度器已启动，无法注册任务 %s", job.Name)
	}
	if job.Interval <= 0 {
		return fmt.Errorf("任务 %s 的执行间隔必须为正", job.Name)
	}
	if job.Run == nil {
		return fmt.Errorf("任务 %s 缺少执行函数", job.Name)
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Start 启动全部任务
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	logger.Info().Int("jobs", len(r.jobs)).Msg("后台任务调度器已启动")
}

// loop 单任务调度循环
func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

// runOnce 执行一次任务，panic转为错误
func (r *Runner) runOnce(ctx context.Context, job Job) {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("任务崩溃: %v", rec)
			}
		}()
		return job.Run(ctx)
	}()
	duration := time.Since(start)

	r.log.JobResult(job.Name, duration, err)

	result := Result{Job: job.Name, At: start, Duration: duration, Err: err}
	select {
	case r.results <- result:
	default:
	}
}

// Results 返回任务结果通道
func (r *Runner) Results() <-chan Result {
	return r.results
}

// JobCount 返回已注册任务数
func (r *Runner) JobCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Stop 停止调度并等待在途任务结束
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	logger.Info().Msg("后台任务调度器已停止")
}
