package gateway

//go:generate go run go.uber.org/mock/mockgen -source=./gateway.go -destination=../mocks/gateway_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"roost/config"
	"roost/infras/otel"
	"roost/shared/constant"
	"roost/shared/failure"
)

const (
	intentsPath = "/v1/payment_intents"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Client talks to the external payment provider. CreateIntent is the
// charge-creating call and is never retried; a timeout there surfaces as a
// gateway error and the whole booking creation is rolled back by the caller.
type Client interface {
	CreateIntent(ctx context.Context, bookingID string, amount int64, currency string) (Intent, error)
	GetIntent(ctx context.Context, intentID string) (Intent, error)
}

type clientImpl struct {
	cfg        *config.Config
	httpClient *http.Client
	otel       otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Client {
	return &clientImpl{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Payment.TimeoutSeconds) * time.Second,
		},
		otel: otel,
	}
}

func (c *clientImpl) CreateIntent(ctx context.Context, bookingID string, amount int64, currency string) (res Intent, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".payment.CreateIntent")
	defer scope.End()
	defer scope.TraceIfError(err)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("metadata[booking_id]", bookingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Payment.BaseURL+intentsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, fmt.Errorf("failed to build payment intent request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+c.cfg.Payment.SecretKey)
	req.Header.Set(constant.RequestHeaderContentType, "application/x-www-form-urlencoded")
	// The provider deduplicates the charge-creating call on its side as well.
	req.Header.Set(constant.RequestHeaderIdempotencyKey, bookingID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("payment intent request failed")

		return Intent{}, failure.BadGateway("payment provider unreachable") //nolint:wrapcheck
	}
	defer resp.Body.Close()

	return c.decodeIntent(resp)
}

// GetIntent is read-only and safe to retry once on transport failure.
func (c *clientImpl) GetIntent(ctx context.Context, intentID string) (res Intent, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".payment.GetIntent")
	defer scope.End()
	defer scope.TraceIfError(err)

	var resp *http.Response

	for attempt := 0; attempt < 2; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Payment.BaseURL+intentsPath+"/"+intentID, nil)
		if reqErr != nil {
			return Intent{}, fmt.Errorf("failed to build payment intent request: %w", reqErr)
		}

		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+c.cfg.Payment.SecretKey)

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}

		log.Warn().Err(err).Str("intentID", intentID).Int("attempt", attempt+1).Msg("payment intent lookup failed")
	}

	if err != nil {
		return Intent{}, failure.BadGateway("payment provider unreachable") //nolint:wrapcheck
	}
	defer resp.Body.Close()

	return c.decodeIntent(resp)
}

func (c *clientImpl) decodeIntent(resp *http.Response) (Intent, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Intent{}, failure.BadGateway("failed to read payment provider response") //nolint:wrapcheck
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("payment provider rejected request")

		return Intent{}, failure.BadGateway(fmt.Sprintf("payment provider returned status %d", resp.StatusCode)) //nolint:wrapcheck
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return Intent{}, failure.BadGateway("failed to decode payment provider response") //nolint:wrapcheck
	}

	return intent, nil
}
