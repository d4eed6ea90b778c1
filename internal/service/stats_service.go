package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/model"
	"simplelink/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrLinkGone 点击到达时链接已被删除，不再重试
var ErrLinkGone = errors.New("link no longer exists")

const dayLayout = "2006-01-02"

// StatsService 点击事件的写入与聚合
type StatsService struct {
	store  *repository.Store
	loc    *time.Location
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewStatsService 创建统计服务，loc 为按天分桶的时区
func NewStatsService(store *repository.Store, loc *time.Location, logger *zap.SugaredLogger) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{
		store:  store,
		loc:    loc,
		logger: logger.Named("stats_service"),
		now:    time.Now,
	}
}

// Record 在同一事务中写入点击记录并递增计数，返回后对后续读取可见
func (s *StatsService) Record(ctx context.Context, event model.ClickEvent) error {
	event.ID = 0
	event.Source = NormalizeSource(event.Source)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	event.CreatedAt = event.CreatedAt.UTC()

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Links().IncrementClicks(ctx, event.LinkID, 1); err != nil {
			return err
		}
		return tx.Clicks().Insert(ctx, &event)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLinkGone
	}
	return err
}

// ClicksByDay 按自然日聚合点击数，日期升序
func (s *StatsService) ClicksByDay(ctx context.Context, owner, linkID uint) ([]model.DailyClicks, error) {
	if _, err := ownedLink(ctx, s.store, owner, linkID); err != nil {
		return nil, err
	}

	buckets := make(map[string]int64)
	err := s.store.Clicks().EachTimestamp(ctx, linkID, func(ts time.Time) {
		buckets[ts.In(s.loc).Format(dayLayout)]++
	})
	if err != nil {
		return nil, apperrors.SystemError(err)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	// YYYY-MM-DD 的字典序即时间顺序
	slices.Sort(days)

	result := make([]model.DailyClicks, 0, len(days))
	for _, day := range days {
		result = append(result, model.DailyClicks{Date: day, Clicks: buckets[day]})
	}
	return result, nil
}

// ClicksBySource 按来源聚合点击数，次数降序
func (s *StatsService) ClicksBySource(ctx context.Context, owner, linkID uint) ([]model.SourceClicks, error) {
	if _, err := ownedLink(ctx, s.store, owner, linkID); err != nil {
		return nil, err
	}
	stats, err := s.store.Clicks().CountBySource(ctx, linkID)
	if err != nil {
		return nil, apperrors.SystemError(err)
	}
	return stats, nil
}

// Reconcile 以点击记录重算 links.clicks
func (s *StatsService) Reconcile(ctx context.Context) (int64, error) {
	fixed, err := s.store.Links().ReconcileClicks(ctx)
	if err != nil {
		return 0, err
	}
	if fixed > 0 {
		s.logger.Warnf("点击计数对账修正了 %d 条链接", fixed)
	}
	return fixed, nil
}

// StartReconciler 按 cron 表达式定期对账，返回已启动的调度器
func (s *StatsService) StartReconciler(expr string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Reconcile(ctx); err != nil {
			s.logger.Errorf("点击计数对账失败: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	s.logger.Infof("点击计数对账任务已启动: %s", expr)
	return c, nil
}
