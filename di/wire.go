//go:build wireinject
// +build wireinject

package di

import (
	"pms/config"
	"pms/infras/jwt"
	"pms/infras/kafka"
	"pms/infras/metrics"
	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/infras/redis"
	"pms/infras/s3"
	"pms/permissions"
	"pms/shared/cache"
	"pms/transport/http"
	"pms/transport/http/middleware"
	"pms/transport/http/router"
	"pms/transport/worker"

	bookingRepository "pms/internal/domains/booking/repository"
	bookingService "pms/internal/domains/booking/service"
	bookingHandler "pms/internal/handlers/booking"

	roomRepository "pms/internal/domains/room/repository"
	roomService "pms/internal/domains/room/service"
	roomHandler "pms/internal/handlers/room"

	groupBookingEvent "pms/internal/domains/groupbooking/event"
	groupBookingRepository "pms/internal/domains/groupbooking/repository"
	groupBookingService "pms/internal/domains/groupbooking/service"
	groupBookingHandler "pms/internal/handlers/groupbooking"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var groupBookingDomain = wire.NewSet(
	groupBookingRepository.New,
	groupBookingEvent.NewPublisher,
	groupBookingService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	groupBookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	groupBookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *worker.Worker {
	wire.Build(
		config.Get,
		postgres.New,
		postgres.NewTransactor,
		otel.New,
		redis.New,
		kafka.New,
		s3.New,
		metrics.New,
		sharedHelpers,
		roomRepository.New,
		bookingRepository.New,
		groupBookingDomain,
		worker.New,
	)

	return &worker.Worker{}
}
