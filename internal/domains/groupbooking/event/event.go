package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"pms/config"
	"pms/infras/kafka"
	"pms/infras/otel"
	"pms/internal/domains/groupbooking/model"
	"pms/shared/constant"
	"pms/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	TypeAllocated = "group_booking.allocated"
	TypeConfirmed = "group_booking.confirmed"
	TypeCancelled = "group_booking.cancelled"
)

type GroupBookingEvent struct {
	Type           string    `json:"type"`
	GroupBookingID string    `json:"group_booking_id"`
	BlockCode      string    `json:"block_code"`
	Status         string    `json:"status"`
	Rooms          []string  `json:"rooms"`
	AssignedGuests int       `json:"assigned_guests"`
	TotalGuests    int       `json:"total_guests"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func FromGroup(eventType string, group model.GroupBooking) GroupBookingEvent {
	return GroupBookingEvent{
		Type:           eventType,
		GroupBookingID: group.ID,
		BlockCode:      group.BlockCode,
		Status:         group.Status,
		Rooms:          group.RoomAllocation.RoomIDs(),
		AssignedGuests: group.RoomAllocation.AssignedGuests(),
		TotalGuests:    group.TotalGuests,
		OccurredAt:     timezone.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt GroupBookingEvent) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

type disabledPublisher struct{}

// NewPublisher writes group booking events to Kafka, keyed by group so every
// event of one group lands on the same partition. With Kafka disabled events
// are dropped.
func NewPublisher(cfg *config.Config, client kafka.Client, otel otel.Otel) Publisher {
	if !cfg.Kafka.Enable {
		log.Warn().Msg("Kafka disabled, group booking events will not be published")

		return disabledPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topics.GroupBooking,
		otel:   otel,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, evt GroupBookingEvent) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelKafkaScopeName, constant.OtelKafkaScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"event.type":       evt.Type,
		"group_booking.id": evt.GroupBookingID,
	})

	if err = p.client.SendMessages(ctx, p.topic, kafka.Message{Key: evt.GroupBookingID, Value: evt}); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", evt.Type, err)
	}

	return nil
}

func (disabledPublisher) Publish(_ context.Context, evt GroupBookingEvent) error {
	log.Debug().Str("type", evt.Type).Str("group_booking_id", evt.GroupBookingID).Msg("event dropped, Kafka disabled")

	return nil
}
