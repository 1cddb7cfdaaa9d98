package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pms/config"
	"pms/infras/kafka"
	kafkaMocks "pms/infras/kafka/mocks"
	otelMocks "pms/infras/otel/mocks"
	"pms/internal/domains/groupbooking/event"
	"pms/internal/domains/groupbooking/model"
)

func enabledConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Kafka.Enable = true
	cfg.Kafka.Topics.GroupBooking = "group-booking-events"

	return cfg
}

func TestFromGroup(t *testing.T) {
	group := model.GroupBooking{
		ID:          "grp-1",
		BlockCode:   "GRP-1",
		Status:      model.StatusInquiry,
		TotalGuests: 9,
		RoomAllocation: model.Allocation{
			{RoomID: "r1", AssignedGuests: 6},
			{RoomID: "r2", AssignedGuests: 2},
		},
	}

	evt := event.FromGroup(event.TypeAllocated, group)

	assert.Equal(t, event.TypeAllocated, evt.Type)
	assert.Equal(t, "grp-1", evt.GroupBookingID)
	assert.Equal(t, []string{"r1", "r2"}, evt.Rooms)
	assert.Equal(t, 8, evt.AssignedGuests)
	assert.Equal(t, 9, evt.TotalGuests)
	assert.False(t, evt.OccurredAt.IsZero())
}

func TestPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := kafkaMocks.NewMockClient(ctrl)
	publisher := event.NewPublisher(enabledConfig(), client, otelMocks.NewOtel())
	evt := event.GroupBookingEvent{Type: event.TypeConfirmed, GroupBookingID: "grp-1"}

	client.EXPECT().
		SendMessages(gomock.Any(), "group-booking-events", kafka.Message{Key: "grp-1", Value: evt}).
		Return(nil)

	require.NoError(t, publisher.Publish(context.Background(), evt))

	client.EXPECT().
		SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker down"))

	assert.Error(t, publisher.Publish(context.Background(), evt))
}

func TestPublisher_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := kafkaMocks.NewMockClient(ctrl)
	publisher := event.NewPublisher(&config.Config{}, client, otelMocks.NewOtel())

	assert.NoError(t, publisher.Publish(context.Background(), event.GroupBookingEvent{Type: event.TypeCancelled}))
}
