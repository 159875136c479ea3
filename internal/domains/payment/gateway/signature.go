package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"roost/shared/failure"
)

// VerifySignature checks the provider's webhook signature header of the form
// "t=<unix>,v1=<hex>", where v1 is HMAC-SHA256 over "<t>.<payload>" with the
// shared webhook secret. The timestamp must be within tolerance of now to
// bound replay of captured payloads.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	timestamp, signature := parseSignatureHeader(header)
	if timestamp == "" || signature == "" {
		return failure.Unauthorized("malformed webhook signature header") //nolint:wrapcheck
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return failure.Unauthorized("malformed webhook signature timestamp") //nolint:wrapcheck
	}

	signedAt := time.Unix(unix, 0)
	if signedAt.Before(now.Add(-tolerance)) || signedAt.After(now.Add(tolerance)) {
		return failure.Unauthorized("webhook signature timestamp outside tolerance") //nolint:wrapcheck
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return failure.Unauthorized("invalid webhook signature") //nolint:wrapcheck
	}

	return nil
}

func parseSignatureHeader(header string) (timestamp, signature string) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}

		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}

	return timestamp, signature
}
