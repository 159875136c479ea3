package gateway_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roost/internal/domains/payment/gateway"
	"roost/shared/failure"
)

const testSecret = "whsec_test"

func signPayload(payload []byte, secret string, signedAt time.Time) string {
	timestamp := strconv.FormatInt(signedAt.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)

	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"id":"evt_1","type":"payment_succeeded"}`)
	tolerance := 5 * time.Minute

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{
			name:   "valid signature",
			header: signPayload(payload, testSecret, now),
		},
		{
			name:   "signature just inside tolerance",
			header: signPayload(payload, testSecret, now.Add(-4*time.Minute)),
		},
		{
			name:    "wrong secret",
			header:  signPayload(payload, "whsec_other", now),
			wantErr: true,
		},
		{
			name:    "timestamp outside tolerance",
			header:  signPayload(payload, testSecret, now.Add(-10*time.Minute)),
			wantErr: true,
		},
		{
			name:    "future timestamp outside tolerance",
			header:  signPayload(payload, testSecret, now.Add(10*time.Minute)),
			wantErr: true,
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: true,
		},
		{
			name:    "malformed header",
			header:  "v1=deadbeef",
			wantErr: true,
		},
		{
			name:    "non-numeric timestamp",
			header:  "t=abc,v1=deadbeef",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gateway.VerifySignature(payload, tt.header, testSecret, tolerance, now)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, 401, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"id":"evt_1"}`)
	header := signPayload(payload, testSecret, now)

	tampered := []byte(`{"id":"evt_2"}`)

	err := gateway.VerifySignature(tampered, header, testSecret, 5*time.Minute, now)

	assert.Error(t, err)
}
