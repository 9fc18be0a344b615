package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/config"
)

const (
	StripeSignatureHeader = "Stripe-Signature"

	// DefaultStripeTolerance matches the processor's own client libraries.
	DefaultStripeTolerance = 300 * time.Second
)

// StripeVerifier checks payment-processor callbacks: hex HMAC-SHA256 over
// "t.body" keyed by the endpoint secret.
type StripeVerifier struct {
	secret    config.SecretSource
	tolerance time.Duration
	now       func() time.Time
}

func NewStripeVerifier(secret config.SecretSource, tolerance time.Duration) *StripeVerifier {
	return &StripeVerifier{secret: secret, tolerance: tolerance, now: time.Now}
}

type stripeSignatureHeader struct {
	timestamp  int64
	signatures [][]byte
}

func parseStripeHeader(raw string) (stripeSignatureHeader, error) {
	var parsed stripeSignatureHeader
	haveTS := false

	for _, pair := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return parsed, fmt.Errorf("invalid timestamp %q", value)
			}
			parsed.timestamp = ts
			haveTS = true
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			parsed.signatures = append(parsed.signatures, sig)
		}
	}

	if !haveTS {
		return parsed, fmt.Errorf("missing timestamp")
	}
	if len(parsed.signatures) == 0 {
		return parsed, fmt.Errorf("no v1 signatures")
	}
	return parsed, nil
}

func (v *StripeVerifier) Verify(body []byte, headers http.Header) (Delivery, error) {
	secret := v.secret()
	if secret == "" {
		return Delivery{}, apperror.MissingConfig("STRIPE_WEBHOOK_SECRET")
	}

	raw := headers.Get(StripeSignatureHeader)
	if raw == "" {
		return Delivery{}, apperror.Authentication("missing stripe-signature header")
	}

	parsed, err := parseStripeHeader(raw)
	if err != nil {
		return Delivery{}, apperror.Authentication("malformed stripe-signature header: " + err.Error())
	}

	ts := time.Unix(parsed.timestamp, 0)
	if !withinTolerance(ts, v.now(), v.tolerance, true) {
		return Delivery{}, apperror.Authentication("stripe timestamp outside tolerance")
	}

	expected := signStripe([]byte(secret), parsed.timestamp, body)
	for _, sig := range parsed.signatures {
		if hmac.Equal(sig, expected) {
			return Delivery{Timestamp: ts}, nil
		}
	}

	return Delivery{}, apperror.Authentication("no signatures found matching the expected signature for payload")
}

// Sign returns a header set that Verify accepts for body.
func (v *StripeVerifier) Sign(ts time.Time, body []byte) (http.Header, error) {
	secret := v.secret()
	if secret == "" {
		return nil, apperror.MissingConfig("STRIPE_WEBHOOK_SECRET")
	}
	h := http.Header{}
	h.Set(StripeSignatureHeader, fmt.Sprintf("t=%d,v1=%s",
		ts.Unix(), hex.EncodeToString(signStripe([]byte(secret), ts.Unix(), body))))
	return h, nil
}

func signStripe(key []byte, unix int64, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%d.", unix)
	mac.Write(body)
	return mac.Sum(nil)
}
