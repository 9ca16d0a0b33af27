package consumers

import (
	"context"
	"net/http"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/messaging"
	"github.com/shopspring/decimal"
)

// TemperatureRecorder stores a sensor reading
type TemperatureRecorder interface {
	LogTemperature(ctx context.Context, in service.LogTemperatureInput) (*domain.TemperatureLog, error)
}

// SensorEventConsumer consumes temperature readings from the sensor gateway
type SensorEventConsumer struct {
	consumer *messaging.Consumer
	recorder TemperatureRecorder
	logger   *logger.Logger
}

// NewSensorEventConsumer creates a new sensor event consumer
func NewSensorEventConsumer(rmq *messaging.RabbitMQ, recorder TemperatureRecorder, log *logger.Logger) (*SensorEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "warehouse-service.sensor-events", "warehouse-service", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeSensorEvents, "sensor.temperature.#"); err != nil {
		return nil, err
	}

	c := newSensorEventConsumer(recorder, log)
	c.consumer = consumer
	consumer.RegisterHandler(messaging.EventSensorReading, c.handleReading)

	return c, nil
}

func newSensorEventConsumer(recorder TemperatureRecorder, log *logger.Logger) *SensorEventConsumer {
	return &SensorEventConsumer{
		recorder: recorder,
		logger:   log.WithComponent("sensor-consumer"),
	}
}

// Start starts consuming messages
func (c *SensorEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleReading records one reading. Readings the warehouse can never accept
// are dropped instead of being redelivered.
func (c *SensorEventConsumer) handleReading(ctx context.Context, event *messaging.Event) error {
	var data messaging.SensorReadingEvent
	if err := event.UnmarshalData(&data); err != nil {
		c.logger.Warn().Err(err).Str("event_id", event.ID).Msg("dropping malformed sensor reading")
		return nil
	}

	temperature, err := decimal.NewFromString(data.Temperature)
	if err != nil {
		c.logger.WithError(err).Warn().
			Str("location_id", data.LocationID).
			Str("temperature", data.Temperature).
			Msg("dropping sensor reading with unparseable temperature")
		return nil
	}

	_, err = c.recorder.LogTemperature(ctx, service.LogTemperatureInput{
		LocationID:  data.LocationID,
		Temperature: temperature,
		RecordedAt:  data.RecordedAt,
	})
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) && !appErr.Retryable && appErr.StatusCode < http.StatusInternalServerError {
		c.logger.Warn().
			Err(err).
			Str("location_id", data.LocationID).
			Msg("dropping rejected sensor reading")
		return nil
	}
	return err
}
