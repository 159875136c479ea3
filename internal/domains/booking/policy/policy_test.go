package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roost/internal/domains/booking/model"
	"roost/internal/domains/booking/policy"
)

func TestWindow_Allow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	p := policy.NewWindow(24)

	tests := []struct {
		name      string
		startDate time.Time
		status    model.Status
		wantErr   bool
	}{
		{
			name:      "pending is always cancelable",
			startDate: now.Add(time.Hour),
			status:    model.StatusPendingPayment,
		},
		{
			name:      "confirmed well before check-in",
			startDate: now.AddDate(0, 0, 7),
			status:    model.StatusConfirmed,
		},
		{
			name:      "confirmed exactly at the cutoff",
			startDate: now.Add(24 * time.Hour),
			status:    model.StatusConfirmed,
		},
		{
			name:      "confirmed inside the cutoff",
			startDate: now.Add(12 * time.Hour),
			status:    model.StatusConfirmed,
			wantErr:   true,
		},
		{
			name:      "confirmed after check-in",
			startDate: now.Add(-24 * time.Hour),
			status:    model.StatusConfirmed,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Allow(now, tt.startDate, tt.status)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
