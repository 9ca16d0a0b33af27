package events_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/events"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channel = "warehouse:temperature"

func coldLocation() *domain.StorageLocation {
	return &domain.StorageLocation{
		ID:           "l-1",
		Zone:         "C",
		Rack:         "R1",
		Slot:         "S1",
		LocationType: domain.CategoryColdStorage,
		MinTemp:      decimal.NewNullDecimal(decimal.NewFromInt(2)),
		MaxTemp:      decimal.NewNullDecimal(decimal.NewFromInt(8)),
	}
}

func reading(temp string, at time.Time) *domain.TemperatureLog {
	return &domain.TemperatureLog{
		LocationID:  "l-1",
		Temperature: decimal.RequireFromString(temp),
		RecordedAt:  at,
	}
}

func decodeReading(t *testing.T, raw string) events.Reading {
	t.Helper()
	var r events.Reading
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestLiveFeed_PublishesAndStoresLatest(t *testing.T) {
	rec := testutil.NewRedisRecorder()
	feed := events.NewLiveFeed(rec, channel, logger.Nop())
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	feed.PublishReading(context.Background(), coldLocation(), reading("4.5", at), true)

	messages := rec.Published(channel)
	require.Len(t, messages, 1)
	msg := decodeReading(t, messages[0])
	assert.Equal(t, "l-1", msg.LocationID)
	assert.Equal(t, "4.5", msg.Temperature)
	assert.Equal(t, "2", msg.MinTemp)
	assert.Equal(t, "8", msg.MaxTemp)
	assert.True(t, msg.InRange)
	assert.True(t, at.Equal(msg.RecordedAt))

	latest, ok := rec.Value(feed.LatestKey("l-1"))
	require.True(t, ok)
	assert.Equal(t, messages[0], latest)
}

func TestLiveFeed_LateReadingKeepsLatest(t *testing.T) {
	rec := testutil.NewRedisRecorder()
	feed := events.NewLiveFeed(rec, channel, logger.Nop())
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	feed.PublishReading(context.Background(), coldLocation(), reading("5", now.Add(-time.Minute)), true)
	feed.PublishReading(context.Background(), coldLocation(), reading("20", now.Add(-time.Hour)), false)

	assert.Len(t, rec.Published(channel), 2)

	latest, ok := rec.Value(feed.LatestKey("l-1"))
	require.True(t, ok)
	msg := decodeReading(t, latest)
	assert.Equal(t, "5", msg.Temperature)
}

func TestLiveFeed_RedisFailureIsSwallowed(t *testing.T) {
	rec := testutil.NewRedisRecorder()
	rec.ExecErr = stderrors.New("connection refused")
	feed := events.NewLiveFeed(rec, channel, logger.Nop())

	assert.NotPanics(t, func() {
		feed.PublishReading(context.Background(), coldLocation(), reading("4", time.Now()), true)
	})
	assert.Empty(t, rec.Published(channel))
}

func TestLiveFeed_NilFeedIsNoop(t *testing.T) {
	var feed *events.LiveFeed

	assert.NotPanics(t, func() {
		feed.PublishReading(context.Background(), coldLocation(), reading("4", time.Now()), true)
	})
}
