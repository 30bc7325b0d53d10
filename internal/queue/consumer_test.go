package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestConsumer() (*Consumer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewConsumer("amqp://unused", zap.NewNop(), zap.New(core)), logs
}

func TestHandlePackageActivated(t *testing.T) {
	c, logs := newTestConsumer()
	body := []byte(`{"package_id":21,"customer_id":4,"pricing_tier_id":2,"payment_id":11,
		"method":"momo","amount":"375000.00","status":"pending",
		"activated_at":"2025-03-02T08:00:00Z","expires_at":"2025-04-02T08:00:00Z","occurred_at":"2025-01-10T08:00:00Z"}`)

	require.NoError(t, c.Handle(PackageActivatedQueue, body))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "package activated", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, uint64(21), fields["package_id"])
	assert.Equal(t, "pending", fields["status"])
	assert.Equal(t, "2025-04-02T08:00:00Z", fields["expires_at"])
}

func TestHandleBookingStatusChanged(t *testing.T) {
	c, logs := newTestConsumer()
	body := []byte(`{"booking_id":31,"customer_id":4,"trainer_id":7,"from":"confirmed","to":"completed",
		"customer_package_id":5,"sessions_used":10,"package_status":"used","actor_id":1,"actor_role":"admin",
		"occurred_at":"2025-01-12T11:00:00Z"}`)

	require.NoError(t, c.Handle(BookingStatusChangedQueue, body))
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "completed", fields["to"])
	assert.Equal(t, int64(10), fields["sessions_used"])
	assert.Equal(t, uint64(7), fields["trainer_id"])
}

func TestHandleRejectsBadInput(t *testing.T) {
	c, logs := newTestConsumer()
	assert.Error(t, c.Handle(PackageActivatedQueue, []byte("{")))
	assert.Error(t, c.Handle("booking.confirmed", []byte("{}")))
	assert.Equal(t, 0, logs.Len())
}
