package consumers

import (
	"context"
	"testing"
	"time"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	inputs []service.LogTemperatureInput
	err    error
}

func (f *fakeRecorder) LogTemperature(ctx context.Context, in service.LogTemperatureInput) (*domain.TemperatureLog, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TemperatureLog{LocationID: in.LocationID, Temperature: in.Temperature}, nil
}

func sensorEvent(t *testing.T, data interface{}) *messaging.Event {
	t.Helper()
	event, err := messaging.NewEvent(messaging.EventSensorReading, "sensor-gateway", "", data)
	require.NoError(t, err)
	return event
}

func TestHandleReading_RecordsTemperature(t *testing.T) {
	recorder := &fakeRecorder{}
	c := newSensorEventConsumer(recorder, logger.Nop())
	at := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

	err := c.handleReading(context.Background(), sensorEvent(t, messaging.SensorReadingEvent{
		LocationID:  "loc-1",
		Temperature: "4.75",
		RecordedAt:  &at,
	}))

	require.NoError(t, err)
	require.Len(t, recorder.inputs, 1)
	assert.Equal(t, "loc-1", recorder.inputs[0].LocationID)
	assert.Equal(t, "4.75", recorder.inputs[0].Temperature.String())
	require.NotNil(t, recorder.inputs[0].RecordedAt)
	assert.True(t, at.Equal(*recorder.inputs[0].RecordedAt))
}

func TestHandleReading_DropsBadPayloads(t *testing.T) {
	recorder := &fakeRecorder{}
	c := newSensorEventConsumer(recorder, logger.Nop())

	err := c.handleReading(context.Background(), sensorEvent(t, messaging.SensorReadingEvent{
		LocationID:  "loc-1",
		Temperature: "warm",
	}))
	assert.NoError(t, err)

	err = c.handleReading(context.Background(), &messaging.Event{Data: []byte(`"not an object"`)})
	assert.NoError(t, err)

	assert.Empty(t, recorder.inputs)
}

func TestHandleReading_RejectedReadingIsNotRetried(t *testing.T) {
	recorder := &fakeRecorder{err: errors.NotFound("location")}
	c := newSensorEventConsumer(recorder, logger.Nop())

	err := c.handleReading(context.Background(), sensorEvent(t, messaging.SensorReadingEvent{
		LocationID:  "gone",
		Temperature: "3",
	}))
	assert.NoError(t, err)
}

func TestHandleReading_RetriesTransientFailures(t *testing.T) {
	for _, failure := range []error{
		errors.ConcurrencyConflict("busy"),
		errors.Internal("database unavailable"),
		context.DeadlineExceeded,
	} {
		recorder := &fakeRecorder{err: failure}
		c := newSensorEventConsumer(recorder, logger.Nop())

		err := c.handleReading(context.Background(), sensorEvent(t, messaging.SensorReadingEvent{
			LocationID:  "loc-1",
			Temperature: "3",
		}))
		assert.Error(t, err)
	}
}
