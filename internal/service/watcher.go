package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/domain"
)

// Ticker is the clock the expiration watcher counts on
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

type expirationWatcher struct {
	newTicker func(time.Duration) Ticker
	logger    *zap.Logger
}

// NewExpirationWatcher creates a watcher ticking once per second
func NewExpirationWatcher(logger *zap.Logger) *expirationWatcher {
	return NewExpirationWatcherWithTicker(func(d time.Duration) Ticker {
		return realTicker{t: time.NewTicker(d)}
	}, logger)
}

// NewExpirationWatcherWithTicker lets tests drive the countdown
func NewExpirationWatcherWithTicker(newTicker func(time.Duration) Ticker, logger *zap.Logger) *expirationWatcher {
	return &expirationWatcher{newTicker: newTicker, logger: logger}
}

// Watch counts down the payment window of order, reporting every second to
// onTick (may be nil). When the count reaches zero the countdown is hidden
// and refetch runs exactly once; the watcher never changes the order itself.
// It returns whether refetch ran. Cancelling ctx stops it without a refetch.
func (w *expirationWatcher) Watch(ctx context.Context, order *domain.OrderDetail, onTick func(domain.Countdown), refetch func(context.Context)) bool {
	if order.Status != domain.OrderStatusPending || order.PaymentStatus == domain.PaymentStatusPaid || order.TimeUntilExpiration == nil {
		return false
	}

	report := func(cd domain.Countdown) {
		if onTick != nil {
			onTick(cd)
		}
	}

	remaining := order.ExpirationSeconds()
	if remaining > 0 {
		report(domain.CountdownFor(order.Status, order.PaymentStatus, remaining))

		ticker := w.newTicker(time.Second)
		defer ticker.Stop()
		for remaining > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C():
				remaining--
				report(domain.CountdownFor(order.Status, order.PaymentStatus, remaining))
			}
		}
	} else {
		report(domain.Countdown{})
	}

	w.logger.Info("Payment window elapsed, re-fetching order",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
	)
	refetch(ctx)
	return true
}
