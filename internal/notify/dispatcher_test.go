package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ms-topup/internal/logger"
	"ms-topup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRooms struct {
	mu     sync.Mutex
	events map[string][]models.StatusEvent
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{events: map[string][]models.StatusEvent{}}
}

func (f *fakeRooms) Publish(room string, event models.StatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[room] = append(f.events[room], event)
}

type fakeWebhook struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []string
}

func (f *fakeWebhook) Enabled() bool { return f.enabled }

func (f *fakeWebhook) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.err
}

func (f *fakeWebhook) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeStream struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakeStream) PublishStatusChange(order models.Order, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, order.OrderID+":"+status)
	return f.err
}

func testOrder() models.Order {
	return models.Order{
		OrderID:       "order-1",
		UserEmail:     "a@b.com",
		Username:      "player1",
		GameID:        "123",
		ServerID:      "2001",
		PackageName:   "100 Diamonds",
		PaymentMethod: "wave",
		TransactionID: "tx-9",
	}
}

func TestStatusChangedPublishesToRoom(t *testing.T) {
	rooms := newFakeRooms()
	webhook := &fakeWebhook{}
	d := NewDispatcher(rooms, webhook, nil, logger.NewLogger())

	d.StatusChanged(testOrder(), "completed")
	d.Wait()

	require.Len(t, rooms.events["order-1"], 1)
	event := rooms.events["order-1"][0]
	assert.Equal(t, "completed", event.Status)
	assert.Equal(t, "Your order is now COMPLETED", event.Message)
}

func TestOrderCreatedPublishesPending(t *testing.T) {
	rooms := newFakeRooms()
	d := NewDispatcher(rooms, &fakeWebhook{}, nil, logger.NewLogger())

	d.OrderCreated(testOrder())
	d.Wait()

	require.Len(t, rooms.events["order-1"], 1)
	assert.Equal(t, models.StatusPending, rooms.events["order-1"][0].Status)
	assert.Equal(t, "Your order was submitted successfully!", rooms.events["order-1"][0].Message)
}

func TestWebhookReceivesOperatorSummary(t *testing.T) {
	rooms := newFakeRooms()
	webhook := &fakeWebhook{enabled: true}
	d := NewDispatcher(rooms, webhook, nil, logger.NewLogger())

	d.StatusChanged(testOrder(), "completed")
	d.Wait()

	msgs := webhook.messages()
	require.Len(t, msgs, 1)
	for _, want := range []string{"order-1", "player1", "100 Diamonds", "123", "2001", "wave", "tx-9", "completed"} {
		assert.True(t, strings.Contains(msgs[0], want), "summary missing %q:\n%s", want, msgs[0])
	}
}

func TestWebhookDisabledIsSkipped(t *testing.T) {
	rooms := newFakeRooms()
	webhook := &fakeWebhook{enabled: false}
	d := NewDispatcher(rooms, webhook, nil, logger.NewLogger())

	d.StatusChanged(testOrder(), "completed")
	d.Wait()

	assert.Empty(t, webhook.messages())
	assert.Len(t, rooms.events["order-1"], 1, "realtime channel must fire regardless")
}

func TestWebhookFailureDoesNotAffectRealtime(t *testing.T) {
	rooms := newFakeRooms()
	webhook := &fakeWebhook{enabled: true, err: errors.New("telegram down")}
	stream := &fakeStream{err: errors.New("broker down")}
	d := NewDispatcher(rooms, webhook, stream, logger.NewLogger())

	// Must not panic or propagate either failure.
	d.StatusChanged(testOrder(), "rejected")
	d.Wait()

	assert.Len(t, rooms.events["order-1"], 1)
}

func TestStreamMirrorsStatusChange(t *testing.T) {
	rooms := newFakeRooms()
	stream := &fakeStream{}
	d := NewDispatcher(rooms, &fakeWebhook{}, stream, logger.NewLogger())

	d.StatusChanged(testOrder(), "processing")
	d.Wait()

	stream.mu.Lock()
	defer stream.mu.Unlock()
	require.Len(t, stream.events, 1)
	assert.Equal(t, "order-1:processing", stream.events[0])
}
