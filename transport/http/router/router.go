package router

import (
	"pms/infras/metrics"
	"pms/internal/handlers/booking"
	"pms/internal/handlers/groupbooking"
	"pms/internal/handlers/room"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pms/docs"
)

type DomainHandlers struct {
	Room         room.Handler
	Booking      booking.Handler
	GroupBooking groupbooking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Metrics        *metrics.Metrics
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	if r.Metrics != nil {
		router.Method("GET", "/metrics", r.Metrics.Handler())
	}

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.GroupBooking.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, metrics *metrics.Metrics) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Metrics:        metrics,
	}
}
