package notifications

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/metrics"
)

// OrderNotifier tells staff about a placed order. It never fails the caller.
type OrderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, order *models.Order) bool
}

type messageSender interface {
	SendMessage(ctx context.Context, text string) error
}

// TelegramNotifier sends order summaries to the staff chat. Sends above the
// configured rate are dropped rather than queued.
type TelegramNotifier struct {
	sender   messageSender
	limiter  *rate.Limiter
	timeout  time.Duration
	currency string
	metrics  *metrics.Storefront
	logg     *logger.Logger
}

// NewTelegramNotifier builds the notifier from cfg. When the bot token or chat
// id is missing it still returns a notifier whose sends are logged no-ops.
func NewTelegramNotifier(cfg config.TelegramConfig, m *metrics.Storefront, logg *logger.Logger, opts ...Option) *TelegramNotifier {
	n := &TelegramNotifier{
		timeout:  cfg.Timeout,
		currency: cfg.CurrencySign,
		metrics:  m,
		logg:     logg,
	}
	if n.timeout <= 0 {
		n.timeout = defaultTimeout
	}
	if n.currency == "" {
		n.currency = "$"
	}
	if cfg.RatePerSec > 0 {
		burst := max(cfg.RateBurst, 1)
		n.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	if client, err := NewClient(cfg, opts...); err == nil {
		n.sender = client
	}
	return n
}

// NotifyOrderPlaced reports whether the message was delivered. The call is
// bounded by the configured timeout and independent of the caller's deadline.
func (n *TelegramNotifier) NotifyOrderPlaced(ctx context.Context, order *models.Order) bool {
	logCtx := ctx
	if n.logg != nil {
		logCtx = n.logg.WithOrderID(ctx, order.ID.String())
	}

	if n.sender == nil {
		n.metrics.Notification(metrics.NotifyDisabled)
		n.warn(logCtx, "telegram bot token or chat id not configured, skipping notification")
		return false
	}
	if n.limiter != nil && !n.limiter.Allow() {
		n.metrics.Notification(metrics.NotifyThrottle)
		n.warn(logCtx, "notification.throttled")
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.sender.SendMessage(sendCtx, FormatOrderMessage(order, n.currency)); err != nil {
		n.metrics.Notification(metrics.NotifyFailed)
		if n.logg != nil {
			n.logg.Error(logCtx, "notification.failed", err)
		}
		return false
	}
	n.metrics.Notification(metrics.NotifySent)
	if n.logg != nil {
		n.logg.Info(logCtx, "notification.sent")
	}
	return true
}

func (n *TelegramNotifier) warn(ctx context.Context, msg string) {
	if n.logg != nil {
		n.logg.Warn(ctx, msg)
	}
}
