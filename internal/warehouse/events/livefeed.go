package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// latestTTL bounds how long the last reading of a silent location stays visible
const latestTTL = 24 * time.Hour

// Reading is the payload pushed to live dashboard subscribers
type Reading struct {
	LocationID  string    `json:"location_id"`
	Zone        string    `json:"zone"`
	Rack        string    `json:"rack"`
	Slot        string    `json:"slot"`
	Temperature string    `json:"temperature"`
	MinTemp     string    `json:"min_temp,omitempty"`
	MaxTemp     string    `json:"max_temp,omitempty"`
	InRange     bool      `json:"in_range"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// LiveFeed pushes temperature readings over Redis pub/sub and keeps the
// latest reading per location under "<channel>:latest:<location id>".
// A nil feed is a no-op.
type LiveFeed struct {
	client  redis.Cmdable
	channel string
	logger  *logger.Logger
}

// NewLiveFeed creates a feed publishing to channel
func NewLiveFeed(client redis.Cmdable, channel string, log *logger.Logger) *LiveFeed {
	return &LiveFeed{client: client, channel: channel, logger: log}
}

// LatestKey returns the key holding a location's latest reading
func (f *LiveFeed) LatestKey(locationID string) string {
	return f.channel + ":latest:" + locationID
}

// PublishReading pushes one accepted reading to subscribers. The latest key is
// only rewritten when current is set, so a late reading never replaces a newer
// one. Failures are logged, never returned.
func (f *LiveFeed) PublishReading(ctx context.Context, loc *domain.StorageLocation, reading *domain.TemperatureLog, current bool) {
	if f == nil {
		return
	}

	msg := Reading{
		LocationID:  loc.ID,
		Zone:        loc.Zone,
		Rack:        loc.Rack,
		Slot:        loc.Slot,
		Temperature: reading.Temperature.String(),
		InRange:     loc.InRange(reading.Temperature),
		RecordedAt:  reading.RecordedAt,
	}
	if loc.MinTemp.Valid {
		msg.MinTemp = loc.MinTemp.Decimal.String()
	}
	if loc.MaxTemp.Valid {
		msg.MaxTemp = loc.MaxTemp.Decimal.String()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error().Err(err).Str("location_id", loc.ID).Msg("failed to encode live reading")
		return
	}

	pipe := f.client.TxPipeline()
	if current {
		pipe.Set(ctx, f.LatestKey(loc.ID), payload, latestTTL)
	}
	pipe.Publish(ctx, f.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		f.logger.Warn().Err(err).Str("location_id", loc.ID).Msg("failed to push live reading")
	}
}
