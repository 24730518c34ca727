package workerpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed   = errors.New("worker pool is closed")
	ErrPoolOverload = errors.New("worker pool is overloaded")
	ErrTimeout      = errors.New("worker pool shutdown timeout")
)

// TaskResult 任务结果
type TaskResult struct {
	Data  interface{}
	Error error
}

// Config Worker Pool 配置
type Config struct {
	Workers   int `mapstructure:"workers"`    // worker 数量
	QueueSize int `mapstructure:"queue_size"` // 等待中的任务上限，0 表示不限制
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:   8,
		QueueSize: 1000,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size cannot be negative, got %d", c.QueueSize)
	}
	return nil
}

// Statistics 统计信息
type Statistics struct {
	Submitted int64 // 已提交
	Completed int64 // 已完成
	Failed    int64 // 失败（返回错误或 panic）
	Running   int64 // 运行中
}

type counters struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	running   atomic.Int64
}

// Pool 基于 ants 的有界任务池
type Pool struct {
	pool   *ants.Pool
	config *Config
	stats  counters
	wg     sync.WaitGroup
	closed atomic.Bool
	logger *logger.Logger
}

// New 创建 Worker Pool
func New(config *Config, log *logger.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrDefault(log)

	antsPool, err := ants.NewPool(config.Workers,
		ants.WithMaxBlockingTasks(config.QueueSize),
		ants.WithPanicHandler(func(v interface{}) {
			log.Error("worker panic", zap.Any("error", v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	return &Pool{
		pool:   antsPool,
		config: config,
		logger: log,
	}, nil
}

// Submit 提交任务，队列已满时阻塞直到有空位或超过等待上限
func (p *Pool) Submit(task func()) error {
	return p.submit(func() error {
		task()
		return nil
	})
}

// SubmitWithResult 提交任务并通过 channel 获取结果；提交失败时 channel 中直接带回错误
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) <-chan TaskResult {
	resultCh := make(chan TaskResult, 1)

	err := p.submit(func() error {
		var data interface{}
		err := p.safeCall(func() error {
			var err error
			data, err = task()
			return err
		})
		resultCh <- TaskResult{Data: data, Error: err}
		close(resultCh)
		return err
	})
	if err != nil {
		resultCh <- TaskResult{Error: err}
		close(resultCh)
	}
	return resultCh
}

func (p *Pool) submit(task func() error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.wg.Add(1)
	p.stats.submitted.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		p.run(task)
	})
	if err != nil {
		p.wg.Done()
		p.stats.submitted.Add(-1)
		switch {
		case errors.Is(err, ants.ErrPoolClosed):
			return ErrPoolClosed
		case errors.Is(err, ants.ErrPoolOverload):
			return ErrPoolOverload
		default:
			return err
		}
	}
	return nil
}

func (p *Pool) run(task func() error) {
	p.stats.running.Add(1)
	err := p.safeCall(task)
	p.stats.running.Add(-1)
	if err != nil {
		p.stats.failed.Add(1)
		return
	}
	p.stats.completed.Add(1)
}

// safeCall 执行任务，panic 转为错误返回
func (p *Pool) safeCall(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panic recovered", zap.Any("panic", r))
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return task()
}

// Running 获取运行中的 worker 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Free 获取空闲 worker 数量
func (p *Pool) Free() int {
	return p.pool.Free()
}

// Stats 获取统计信息快照
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.stats.submitted.Load(),
		Completed: p.stats.completed.Load(),
		Failed:    p.stats.failed.Load(),
		Running:   p.stats.running.Load(),
	}
}

// Shutdown 停止接收新任务并等待已提交任务完成；timeout <= 0 时一直等待
func (p *Pool) Shutdown(timeout time.Duration) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	if timeout > 0 {
		select {
		case <-done:
		case <-time.After(timeout):
			err = ErrTimeout
		}
	} else {
		<-done
	}

	p.pool.Release()
	p.logger.Info("worker pool stopped",
		zap.Int64("submitted", p.stats.submitted.Load()),
		zap.Int64("failed", p.stats.failed.Load()))
	return err
}
