package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ms-topup/internal/logger"
	"ms-topup/internal/models"
)

type RoomPublisher interface {
	Publish(room string, event models.StatusEvent)
}

type WebhookSender interface {
	Enabled() bool
	Send(ctx context.Context, text string) error
}

type StreamPublisher interface {
	PublishStatusChange(order models.Order, status string) error
}

// Dispatcher fans a status change out to the live subscriber room and
// the operator webhook. The two channels are independent, best-effort
// and never influence the HTTP response already prepared for the
// caller: the realtime publish is non-blocking and the webhook runs
// detached with its errors logged and dropped.
type Dispatcher struct {
	Rooms   RoomPublisher
	Webhook WebhookSender
	Stream  StreamPublisher
	Logger  *logger.Logger

	wg sync.WaitGroup
}

func NewDispatcher(rooms RoomPublisher, webhook WebhookSender, stream StreamPublisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{Rooms: rooms, Webhook: webhook, Stream: stream, Logger: log}
}

// OrderCreated announces a freshly submitted order.
func (d *Dispatcher) OrderCreated(order models.Order) {
	d.dispatch(order, models.StatusPending, "Your order was submitted successfully!")
}

// StatusChanged announces an admin-driven status transition.
func (d *Dispatcher) StatusChanged(order models.Order, status string) {
	d.dispatch(order, status, fmt.Sprintf("Your order is now %s", strings.ToUpper(status)))
}

func (d *Dispatcher) dispatch(order models.Order, status, message string) {
	// Channel A: live subscribers in the order's room. No subscribers
	// is a silent no-op.
	d.Rooms.Publish(order.OrderID, models.StatusEvent{Status: status, Message: message})

	// Channels B and C run detached; the persistence write already
	// succeeded and their failures stay out of the caller's result.
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.Webhook != nil && d.Webhook.Enabled() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := d.Webhook.Send(ctx, operatorText(order, status)); err != nil {
				d.Logger.Error("NOTIFY", fmt.Sprintf("Telegram error: %v", err))
			}
		}

		if d.Stream != nil {
			if err := d.Stream.PublishStatusChange(order, status); err != nil {
				d.Logger.Error("NOTIFY", fmt.Sprintf("Kafka publish error (order %s): %v", order.OrderID, err))
			}
		}
	}()
}

// Wait blocks until in-flight webhook deliveries finish. Used by
// graceful shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func operatorText(order models.Order, status string) string {
	return fmt.Sprintf(`📣 Order Update
Order ID: %s
User: %s
Package: %s
Game ID: %s
Server: %s
Payment: %s
TX: %s
Status: %s
Time: %s`,
		order.OrderID,
		order.Username,
		order.PackageName,
		order.GameID,
		order.ServerID,
		order.PaymentMethod,
		order.TransactionID,
		status,
		time.Now().Format("2006-01-02 15:04:05"),
	)
}
