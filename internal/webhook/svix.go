package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/config"
)

const (
	SvixIDHeader        = "svix-id"
	SvixTimestampHeader = "svix-timestamp"
	SvixSignatureHeader = "svix-signature"

	svixSecretPrefix = "whsec_"
)

// SvixVerifier checks identity-provider callbacks signed the Svix way:
// base64 HMAC-SHA256 over "id.timestamp.body".
type SvixVerifier struct {
	secret    config.SecretSource
	tolerance time.Duration
	now       func() time.Time
}

func NewSvixVerifier(secret config.SecretSource, tolerance time.Duration) *SvixVerifier {
	return &SvixVerifier{secret: secret, tolerance: tolerance, now: time.Now}
}

func (v *SvixVerifier) key() ([]byte, error) {
	secret := v.secret()
	if secret == "" {
		return nil, apperror.MissingConfig("WEBHOOK_SECRET")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, svixSecretPrefix))
	if err != nil {
		return nil, &apperror.AppError{
			Err:     apperror.ErrConfiguration,
			Message: "WEBHOOK_SECRET is not valid base64",
			Field:   "WEBHOOK_SECRET",
		}
	}
	return key, nil
}

func header(headers http.Header, name, fallback string) string {
	if v := headers.Get(name); v != "" {
		return v
	}
	return headers.Get(fallback)
}

func (v *SvixVerifier) Verify(body []byte, headers http.Header) (Delivery, error) {
	key, err := v.key()
	if err != nil {
		return Delivery{}, err
	}

	id := header(headers, SvixIDHeader, "webhook-id")
	rawTS := header(headers, SvixTimestampHeader, "webhook-timestamp")
	signatures := header(headers, SvixSignatureHeader, "webhook-signature")
	if id == "" || rawTS == "" || signatures == "" {
		return Delivery{}, apperror.Authentication("Error occurred -- no svix headers")
	}

	unix, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return Delivery{}, apperror.Authentication("invalid svix timestamp")
	}
	ts := time.Unix(unix, 0)
	if !withinTolerance(ts, v.now(), v.tolerance, false) {
		return Delivery{}, apperror.Authentication("svix timestamp outside tolerance")
	}

	expected := signSvix(key, id, unix, body)
	for _, candidate := range strings.Fields(signatures) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return Delivery{ID: id, Timestamp: ts}, nil
		}
	}

	return Delivery{}, apperror.Authentication("no matching svix signature")
}

// Sign returns a header set that Verify accepts for body.
func (v *SvixVerifier) Sign(id string, ts time.Time, body []byte) (http.Header, error) {
	key, err := v.key()
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set(SvixIDHeader, id)
	h.Set(SvixTimestampHeader, strconv.FormatInt(ts.Unix(), 10))
	h.Set(SvixSignatureHeader, "v1,"+signSvix(key, id, ts.Unix(), body))
	return h, nil
}

func signSvix(key []byte, id string, unix int64, body []byte) string {
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%d.", id, unix)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
