// Package payment talks to the payment provider.
//
// Opening a payment order is an HTTP call made with resty. Confirming one never
// is: the provider signs "<orderRef>:<paymentRef>" with a shared secret using
// HMAC-SHA256 and the kiosk recomputes the signature locally.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

var ErrSecretNotConfigured = errors.New("payment secret is not configured")

type openOrderRequest struct {
	OrderRef string `json:"orderRef"`
	Amount   int64  `json:"amount"`
}

type openOrderResponse struct {
	PaymentRef string `json:"paymentRef"`
}

// Gateway implements ports.PaymentGateway.
type Gateway struct {
	client *resty.Client
	secret []byte
	logger *slog.Logger
}

// NewGateway builds a gateway. With an empty baseURL, OpenOrder issues local
// references instead of calling out, which is how kiosks without an online
// provider run.
func NewGateway(baseURL, secret string, timeout time.Duration, logger *slog.Logger) *Gateway {
	g := &Gateway{
		secret: []byte(secret),
		logger: logger.With("component", "payment_gateway"),
	}
	if baseURL != "" {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		g.client = resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json")
	}
	return g
}

func (g *Gateway) OpenOrder(ctx context.Context, orderRef string, amount int64) (string, error) {
	if g.client == nil {
		return "local-" + uuid.NewString(), nil
	}

	var out openOrderResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(openOrderRequest{OrderRef: orderRef, Amount: amount}).
		SetResult(&out).
		Post("/api/v1/payments")
	if err != nil {
		return "", fmt.Errorf("open payment order: %w", err)
	}
	if resp.IsError() {
		g.logger.ErrorContext(ctx, "gateway rejected payment order",
			"order_id", orderRef, "status", resp.StatusCode())
		return "", fmt.Errorf("open payment order: gateway responded %s", resp.Status())
	}
	if out.PaymentRef == "" {
		return "", errors.New("open payment order: gateway returned an empty payment reference")
	}
	return out.PaymentRef, nil
}

// VerifySignature compares in constant time. A malformed signature is simply
// invalid, not an error.
func (g *Gateway) VerifySignature(_ context.Context, orderRef, paymentRef, signature string) (bool, error) {
	if len(g.secret) == 0 {
		return false, ErrSecretNotConfigured
	}
	given, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false, nil
	}
	return hmac.Equal(given, g.mac(orderRef, paymentRef)), nil
}

// Sign returns the hex signature the provider would send for the pair.
func (g *Gateway) Sign(orderRef, paymentRef string) string {
	return hex.EncodeToString(g.mac(orderRef, paymentRef))
}

func (g *Gateway) mac(orderRef, paymentRef string) []byte {
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(orderRef + ":" + paymentRef))
	return h.Sum(nil)
}
