package router

import (
	"github.com/go-chi/chi/v5"

	"roost/internal/handlers/booking"
	"roost/internal/handlers/webhook"
)

type DomainHandlers struct {
	Booking booking.Handler
	Webhook webhook.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Webhook.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
