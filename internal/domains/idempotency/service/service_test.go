package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roost/config"
	"roost/infras/otel/mocks"
	idemMocks "roost/internal/domains/idempotency/mocks"
	"roost/internal/domains/idempotency/model"
	"roost/internal/domains/idempotency/repository"
	"roost/internal/domains/idempotency/service"
	"roost/shared/failure"
)

func newService(t *testing.T) (service.Idempotency, *idemMocks.MockIdempotency) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := idemMocks.NewMockIdempotency(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Booking.IdempotencyRetentionHours = 24
	cfg.Booking.InflightTakeoverSeconds = 90

	return service.New(mockRepo, cfg, mockOtel), mockRepo
}

func TestIdempotencyService_BeginOrReplay(t *testing.T) {
	const (
		key         = "key-1"
		guestID     = "guest-1"
		fingerprint = "fp-1"
	)

	tests := []struct {
		name      string
		setupMock func(mockRepo *idemMocks.MockIdempotency)
		wantKind  service.OutcomeKind
		wantErr   bool
		wantCode  int
	}{
		{
			name: "fresh request inserts an in-flight record",
			setupMock: func(mockRepo *idemMocks.MockIdempotency) {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantKind: service.Fresh,
		},
		{
			name: "completed record replays the stored response",
			setupMock: func(mockRepo *idemMocks.MockIdempotency) {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(repository.ErrDuplicateKey)
				mockRepo.EXPECT().
					Get(gomock.Any(), key, guestID).
					Return(model.Record{
						Key:          key,
						GuestID:      guestID,
						Fingerprint:  fingerprint,
						State:        model.StateCompleted,
						BookingID:    "booking-1",
						ResponseBody: []byte(`{"booking_id":"booking-1"}`),
					}, nil)
			},
			wantKind: service.Replay,
		},
		{
			name: "same key with a different payload conflicts",
			setupMock: func(mockRepo *idemMocks.MockIdempotency) {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(repository.ErrDuplicateKey)
				mockRepo.EXPECT().
					Get(gomock.Any(), key, guestID).
					Return(model.Record{
						Key:         key,
						GuestID:     guestID,
						Fingerprint: "different-fp",
						State:       model.StateCompleted,
					}, nil)
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "failed record is taken over and retried",
			setupMock: func(mockRepo *idemMocks.MockIdempotency) {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(repository.ErrDuplicateKey)
				mockRepo.EXPECT().
					Get(gomock.Any(), key, guestID).
					Return(model.Record{
						Key:         key,
						GuestID:     guestID,
						Fingerprint: fingerprint,
						State:       model.StateFailed,
					}, nil)
				mockRepo.EXPECT().
					Takeover(gomock.Any(), key, guestID, gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantKind: service.Fresh,
		},
		{
			name: "recent in-flight record conflicts",
			setupMock: func(mockRepo *idemMocks.MockIdempotency) {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(repository.ErrDuplicateKey)
				mockRepo.EXPECT().
					Get(gomock.Any(), key, guestID).
					Return(model.Record{
						Key:         key,
						GuestID:     guestID,
						Fingerprint: fingerprint,
						State:       model.StateInFlight,
					}, nil)
				mockRepo.EXPECT().
					Takeover(gomock.Any(), key, guestID, gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr:  true,
			wantCode: 409,
		},
		{
			name: "repository error is propagated",
			setupMock: func(mockRepo *idemMocks.MockIdempotency) {
				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := newService(t)
			tt.setupMock(mockRepo)

			outcome, err := svc.BeginOrReplay(context.Background(), key, guestID, fingerprint)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)

			if tt.wantKind == service.Replay {
				assert.NotEmpty(t, outcome.Response)
			}
		})
	}
}

func TestIdempotencyService_Fingerprint(t *testing.T) {
	type payload struct {
		PropertyID string `json:"property_id"`
		StartDate  string `json:"start_date"`
	}

	a := service.Fingerprint(payload{PropertyID: "p1", StartDate: "2026-09-01"})
	b := service.Fingerprint(payload{PropertyID: "p1", StartDate: "2026-09-01"})
	c := service.Fingerprint(payload{PropertyID: "p1", StartDate: "2026-09-02"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestIdempotencyService_PurgeExpired(t *testing.T) {
	svc, mockRepo := newService(t)

	mockRepo.EXPECT().
		DeleteExpired(gomock.Any(), gomock.Any()).
		Return(int64(3), nil)

	purged, err := svc.PurgeExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), purged)
}
