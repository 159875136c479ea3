package webhook

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"roost/infras/otel"
	"roost/internal/domains/payment/service"
	"roost/shared/constant"
	"roost/shared/failure"
	"roost/transport/http/response"
)

const maxPayloadBytes = 1 << 20

type Acknowledgement struct {
	Received bool `json:"received"`
}

// Handler receives payment provider callbacks. Authenticated by the HMAC
// signature header, never by user tokens.
type Handler struct {
	service service.Webhook
	otel    otel.Otel
}

func New(service service.Webhook, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/webhooks", func(routerGroup chi.Router) {
		routerGroup.Post("/payment", handler.HandlePaymentEvent)
	})
}

func (handler *Handler) HandlePaymentEvent(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".HandlePaymentEvent")
	defer scope.End()

	payload, err := io.ReadAll(io.LimitReader(request.Body, maxPayloadBytes))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read webhook payload")

		response.WithError(writer, failure.BadRequestFromString("failed to read payload"))

		return
	}

	signature := request.Header.Get(constant.RequestHeaderSignature)

	if err := handler.service.Process(ctx, payload, signature); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to process payment webhook")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Payment webhook processed")

	response.WithJSON(writer, http.StatusOK, Acknowledgement{Received: true})
}
