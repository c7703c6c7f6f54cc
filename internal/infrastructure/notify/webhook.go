// Package notify передаёт назначения во внешний слой уведомлений.
// Форматирование сообщения остаётся на стороне получателя.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultAttempts    = 3
	initialRetryDelay  = 200 * time.Millisecond
	maxRetryDelay      = 2 * time.Second
	defaultSendTimeout = 5 * time.Second
	webhookContentType = "application/json"
)

var (
	errWebhookStatus = errors.New("webhook responded with error status")
	errClientStatus  = errors.New("webhook rejected notification")
)

// WebhookNotifier отправляет Notification как JSON POST
type WebhookNotifier struct {
	url      string
	client   *http.Client
	attempts uint
	delay    time.Duration
	log      *zap.Logger
}

type Option func(*WebhookNotifier)

func WithHTTPClient(c *http.Client) Option {
	return func(n *WebhookNotifier) {
		n.client = c
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(n *WebhookNotifier) {
		n.delay = d
	}
}

func NewWebhookNotifier(url string, attempts uint, log *zap.Logger, opts ...Option) *WebhookNotifier {
	if attempts == 0 {
		attempts = defaultAttempts
	}
	n := &WebhookNotifier{
		url:      url,
		client:   &http.Client{Timeout: defaultSendTimeout},
		attempts: attempts,
		delay:    initialRetryDelay,
		log:      log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = retry.Do(
		func() error {
			return n.send(ctx, body)
		},
		retry.Context(ctx),
		retry.Attempts(n.attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(n.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.OnRetry(func(attempt uint, err error) {
			n.log.Warn("notification attempt failed",
				zap.String("team_id", msg.TeamId),
				zap.String("reviewer_id", msg.ReviewerId),
				zap.Uint("attempt", attempt+1),
				zap.Uint("max_attempts", n.attempts),
				zap.Error(err),
			)
		}),
		// 4xx повторять бессмысленно
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errClientStatus)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	n.log.Debug("notification delivered",
		zap.String("team_id", msg.TeamId),
		zap.String("reviewer_id", msg.ReviewerId),
	)
	return nil
}

func (n *WebhookNotifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", webhookContentType)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %d", errWebhookStatus, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %d", errClientStatus, resp.StatusCode)
	}
	return nil
}

// NopNotifier используется, когда адрес уведомлений не задан
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, domain.Notification) error {
	return nil
}
