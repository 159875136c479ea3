//go:build wireinject
// +build wireinject

package di

import (
	"roost/config"
	"roost/infras/jwt"
	"roost/infras/kafka"
	"roost/infras/otel"
	"roost/infras/postgres"
	"roost/infras/redis"
	"roost/internal/domains/availability"
	"roost/internal/events"
	"roost/internal/service/sweep"
	"roost/shared/cache"
	"roost/transport/http"
	"roost/transport/http/middleware"
	"roost/transport/http/router"

	bookingRepository "roost/internal/domains/booking/repository"
	bookingService "roost/internal/domains/booking/service"
	idempotencyRepository "roost/internal/domains/idempotency/repository"
	idempotencyService "roost/internal/domains/idempotency/service"
	"roost/internal/domains/payment/gateway"
	paymentRepository "roost/internal/domains/payment/repository"
	paymentService "roost/internal/domains/payment/service"
	propertyRepository "roost/internal/domains/property/repository"

	bookingHandler "roost/internal/handlers/booking"
	webhookHandler "roost/internal/handlers/webhook"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.TxRunner), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var propertyDomain = wire.NewSet(
	propertyRepository.New,
)

var idempotencyDomain = wire.NewSet(
	idempotencyRepository.New,
	idempotencyService.New,
)

var paymentDomain = wire.NewSet(
	gateway.New,
	paymentRepository.New,
	paymentService.New,
)

var bookingDomain = wire.NewSet(
	availability.New,
	provideCancellationPolicy,
	bookingRepository.New,
	bookingService.New,
)

var eventing = wire.NewSet(
	events.NewPublisher,
)

var domains = wire.NewSet(
	propertyDomain,
	idempotencyDomain,
	paymentDomain,
	bookingDomain,
	eventing,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	webhookHandler.New,
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

func InitializeSweeper() sweep.Sweeper {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		domains,
		sweep.New,
	)

	return nil
}
