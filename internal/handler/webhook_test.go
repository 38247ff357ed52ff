package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_handler"

type countingTrigger struct{ n int }

func (c *countingTrigger) Trigger() { c.n++ }

func signedWebhook(t *testing.T, secret, eventType string) *http.Request {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"data":{"object":{}}}`, eventType))
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func TestWebhookHandler_CatalogEventTriggersSync(t *testing.T) {
	trigger := &countingTrigger{}
	h := NewWebhookHandler(testWebhookSecret, trigger, Options{})

	rec := httptest.NewRecorder()
	h.Stripe(rec, signedWebhook(t, testWebhookSecret, "price.updated"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, 1, trigger.n)
}

func TestWebhookHandler_OtherEventsAcknowledged(t *testing.T) {
	trigger := &countingTrigger{}
	h := NewWebhookHandler(testWebhookSecret, trigger, Options{})

	rec := httptest.NewRecorder()
	h.Stripe(rec, signedWebhook(t, testWebhookSecret, "checkout.session.completed"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, trigger.n)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	trigger := &countingTrigger{}
	h := NewWebhookHandler(testWebhookSecret, trigger, Options{})

	rec := httptest.NewRecorder()
	h.Stripe(rec, signedWebhook(t, "whsec_attacker", "product.created"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SIGNATURE", decodeError(t, rec).Code)
	assert.Zero(t, trigger.n)
}

func TestWebhookHandler_NotConfigured(t *testing.T) {
	h := NewWebhookHandler("", &countingTrigger{}, Options{})

	rec := httptest.NewRecorder()
	h.Stripe(rec, signedWebhook(t, testWebhookSecret, "product.created"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "WEBHOOK_NOT_CONFIGURED", decodeError(t, rec).Code)
}
