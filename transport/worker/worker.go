package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"pms/config"
	"pms/infras/kafka"
	"pms/infras/otel"
	"pms/internal/domains/groupbooking/event"
	"pms/internal/domains/groupbooking/service"
	"pms/shared/constant"
	"pms/shared/failure"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const otelWorkerScopeName = "worker"

// Worker renders the rooming list of every group booking as soon as it is
// confirmed.
type Worker struct {
	config       *config.Config
	client       kafka.Client
	groupBooking service.GroupBooking
	otel         otel.Otel
}

func New(cfg *config.Config, client kafka.Client, groupBooking service.GroupBooking, otel otel.Otel) *Worker {
	return &Worker{
		config:       cfg,
		client:       client,
		groupBooking: groupBooking,
		otel:         otel,
	}
}

// Run blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if !w.config.Kafka.Enable {
		return errors.New("kafka is disabled, nothing to consume")
	}

	log.Info().
		Str("topic", w.config.Kafka.Topics.GroupBooking).
		Str("group", w.config.Kafka.ConsumerGroup).
		Msg("Starting group booking worker.")

	if err := w.client.Consume(ctx, w.config.Kafka.ConsumerGroup, w.config.Kafka.Topics.GroupBooking, w.Handle); err != nil {
		return fmt.Errorf("failed to consume group booking events: %w", err)
	}

	return nil
}

// Handle processes one group booking event. Events other than confirmations
// are acknowledged untouched. Groups that vanished or lost their allocation
// are acknowledged too since retrying cannot succeed.
func (w *Worker) Handle(ctx context.Context, message kafkaGo.Message) (err error) {
	ctx, scope := w.otel.NewScope(ctx, otelWorkerScopeName, otelWorkerScopeName+".Handle")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	evt, err := kafka.Decode[event.GroupBookingEvent](message)
	if err != nil {
		log.Warn().Err(err).Str("key", string(message.Key)).Msg("Skipping malformed group booking event")

		return nil
	}

	scope.SetAttributes(map[string]any{
		"event.type":       evt.Type,
		"group_booking.id": evt.GroupBookingID,
	})

	if evt.Type != event.TypeConfirmed {
		return nil
	}

	ctx = context.WithValue(ctx, constant.ContextKeyUserID, constant.SystemUser)

	res, err := w.groupBooking.ExportRoomingList(ctx, evt.GroupBookingID)
	if err != nil {
		switch failure.GetCode(err) {
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			log.Warn().Err(err).Str("group_booking_id", evt.GroupBookingID).Msg("Skipping rooming list export")

			return nil
		}

		return fmt.Errorf("failed to export rooming list for %s: %w", evt.GroupBookingID, err)
	}

	log.Info().
		Str("group_booking_id", evt.GroupBookingID).
		Str("url", res.URL).
		Msg("Rooming list exported")

	return nil
}
