package service

import (
	"context"
	"testing"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatsService_ClicksByDay(t *testing.T) {
	store := newTestStore(t)
	links := newTestLinkService(t, store)
	stats := NewStatsService(store, time.UTC, zap.NewNop().Sugar())
	ctx := context.Background()
	id := mustCreate(t, links, 1, CreateLinkInput{URL: "https://example.com"})

	day := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	const n = 5
	for i := 0; i < n; i++ {
		ev := model.ClickEvent{LinkID: id, CreatedAt: day.Add(time.Duration(i) * 3 * time.Hour)}
		require.NoError(t, stats.Record(ctx, ev))
	}
	require.NoError(t, stats.Record(ctx, model.ClickEvent{LinkID: id, CreatedAt: day.AddDate(0, 0, -1)}))

	got, err := stats.ClicksByDay(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, []model.DailyClicks{
		{Date: "2024-05-19", Clicks: 1},
		{Date: "2024-05-20", Clicks: n},
	}, got)

	link, err := links.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), link.Clicks)
}

func TestStatsService_ClicksByDayUsesTimezone(t *testing.T) {
	store := newTestStore(t)
	links := newTestLinkService(t, store)
	stats := NewStatsService(store, time.FixedZone("UTC+8", 8*3600), zap.NewNop().Sugar())
	ctx := context.Background()
	id := mustCreate(t, links, 1, CreateLinkInput{URL: "https://example.com"})

	// UTC 20:00 在东八区已是次日
	require.NoError(t, stats.Record(ctx, model.ClickEvent{LinkID: id, CreatedAt: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}))
	require.NoError(t, stats.Record(ctx, model.ClickEvent{LinkID: id, CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}))

	got, err := stats.ClicksByDay(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, []model.DailyClicks{
		{Date: "2024-03-01", Clicks: 1},
		{Date: "2024-03-02", Clicks: 1},
	}, got)
}

func TestStatsService_ClicksBySource(t *testing.T) {
	store := newTestStore(t)
	links := newTestLinkService(t, store)
	stats := NewStatsService(store, nil, zap.NewNop().Sugar())
	ctx := context.Background()
	id := mustCreate(t, links, 1, CreateLinkInput{URL: "https://example.com"})

	for _, src := range []string{"twitter", "", "mail", "twitter", "  "} {
		require.NoError(t, stats.Record(ctx, model.ClickEvent{LinkID: id, Source: src}))
	}

	got, err := stats.ClicksBySource(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, []model.SourceClicks{
		{Source: "direct", Count: 2},
		{Source: "twitter", Count: 2},
		{Source: "mail", Count: 1},
	}, got)

	empty := mustCreate(t, links, 1, CreateLinkInput{URL: "https://example.com"})
	none, err := stats.ClicksBySource(ctx, 1, empty)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStatsService_Ownership(t *testing.T) {
	store := newTestStore(t)
	links := newTestLinkService(t, store)
	stats := NewStatsService(store, nil, zap.NewNop().Sugar())
	ctx := context.Background()
	id := mustCreate(t, links, 1, CreateLinkInput{URL: "https://example.com"})

	_, err := stats.ClicksByDay(ctx, 2, id)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = stats.ClicksBySource(ctx, 1, 9999)
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}

func TestStatsService_RecordDeletedLink(t *testing.T) {
	store := newTestStore(t)
	stats := NewStatsService(store, nil, zap.NewNop().Sugar())

	err := stats.Record(context.Background(), model.ClickEvent{LinkID: 4242, Source: "x"})
	assert.ErrorIs(t, err, ErrLinkGone)
}

func TestStatsService_Reconcile(t *testing.T) {
	store := newTestStore(t)
	links := newTestLinkService(t, store)
	stats := NewStatsService(store, nil, zap.NewNop().Sugar())
	ctx := context.Background()
	id := mustCreate(t, links, 1, CreateLinkInput{URL: "https://example.com"})

	require.NoError(t, stats.Record(ctx, model.ClickEvent{LinkID: id}))
	require.NoError(t, store.Links().IncrementClicks(ctx, id, 10))

	fixed, err := stats.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed)

	link, err := links.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.Clicks)
}

func TestStatsService_StartReconcilerRejectsBadExpression(t *testing.T) {
	stats := NewStatsService(newTestStore(t), nil, zap.NewNop().Sugar())
	_, err := stats.StartReconciler("every tuesday-ish")
	assert.Error(t, err)

	c, err := stats.StartReconciler("@every 1h")
	require.NoError(t, err)
	<-c.Stop().Done()
}
