package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"simplelink/internal/model"

	"go.uber.org/zap"
)

// ClickSink 点击事件的落库目标，由 StatsService 实现
type ClickSink interface {
	Record(ctx context.Context, event model.ClickEvent) error
}

// RecorderOptions 异步写入参数
type RecorderOptions struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
}

// ClickRecorder 将重定向产生的点击异步写入，重定向路径不等待落库
type ClickRecorder struct {
	sink     ClickSink
	opts     RecorderOptions
	queue    chan model.ClickEvent
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
	logger   *zap.SugaredLogger
}

// NewClickRecorder 创建并启动工作协程
func NewClickRecorder(sink ClickSink, opts RecorderOptions, logger *zap.SugaredLogger) *ClickRecorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 4096
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 50 * time.Millisecond
	}

	r := &ClickRecorder{
		sink:   sink,
		opts:   opts,
		queue:  make(chan model.ClickEvent, opts.QueueSize),
		logger: logger.Named("click_recorder"),
	}
	for i := 0; i < opts.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// Enqueue 非阻塞入队；队列已满或已停止时丢弃并返回 false
func (r *ClickRecorder) Enqueue(event model.ClickEvent) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warnf("记录器已停止，丢弃链接 %d 的点击", event.LinkID)
		return false
	}
	select {
	case r.queue <- event:
		return true
	default:
		r.logger.Warnf("点击队列已满，丢弃链接 %d 的点击", event.LinkID)
		return false
	}
}

// Stop 停止接收并等待队列排空，ctx 到期时放弃等待
func (r *ClickRecorder) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.logger.Info("点击队列已排空")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *ClickRecorder) worker() {
	defer r.wg.Done()
	for event := range r.queue {
		r.deliver(event)
	}
}

// deliver 有限次重试，指数退避
func (r *ClickRecorder) deliver(event model.ClickEvent) {
	backoff := r.opts.RetryBackoff
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.sink.Record(ctx, event)
		cancel()
		if err == nil {
			return
		}
		if errors.Is(err, ErrLinkGone) {
			r.logger.Debugf("链接 %d 已删除，忽略点击", event.LinkID)
			return
		}
		if attempt >= r.opts.MaxRetries {
			r.logger.Errorf("写入点击失败，已重试 %d 次，丢弃: link=%d source=%s err=%v",
				attempt, event.LinkID, event.Source, err)
			return
		}
		time.Sleep(backoff)
		backoff *= 2
	}
}
