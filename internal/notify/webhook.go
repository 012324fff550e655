package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const SignatureHeader = "X-Marketplace-Signature"

type Service interface {
	Listen(events *event.Manager)
	NotifyFromEvent(el interface{})
	Notify(ctx context.Context, ev entity.ListingEvent) error
}

type webhook struct {
	url    string
	secret string
	client *retryablehttp.Client
}

func NewWebhook(url, secret string, client *retryablehttp.Client) Service {
	return webhook{url, secret, client}
}

func NewClient(retries int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.HTTPClient.Timeout = timeout
	client.Logger = retryLogger{}

	return client
}

func (s webhook) Listen(events *event.Manager) {
	events.AddListener(s.NotifyFromEvent, event.AllEvents...)
}

func (s webhook) NotifyFromEvent(el interface{}) {
	ev, ok := el.(entity.ListingEvent)
	if !ok {
		return
	}

	_ = s.Notify(context.Background(), ev)
}

func (s webhook) Notify(ctx context.Context, ev entity.ListingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Marketplace-Event", ev.Type)
	if s.secret != "" {
		req.Header.Set(SignatureHeader, Sign(s.secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("url", s.url),
			zap.String("id", ev.Id),
			zap.String("type", ev.Type),
		).Error("Webhook: Failed to deliver event")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		zap.L().With(
			zap.Int("status", resp.StatusCode),
			zap.String("url", s.url),
			zap.String("id", ev.Id),
		).Error("Webhook: Event rejected")
		return fmt.Errorf("webhook responded with %d", resp.StatusCode)
	}

	zap.L().With(zap.String("id", ev.Id), zap.String("type", ev.Type)).Debug("Webhook: Event delivered")

	return nil
}

// Sign returns the hex encoded HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

type retryLogger struct{}

func (l retryLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}
