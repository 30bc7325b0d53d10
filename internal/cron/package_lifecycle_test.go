package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	calls     []string
	at        []time.Time
	expireErr error
	expired   int64
	promoted  int64
}

func (f *fakeStore) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	f.calls = append(f.calls, "expire")
	f.at = append(f.at, now)
	return f.expired, f.expireErr
}

func (f *fakeStore) PromoteDue(_ context.Context, now time.Time) (int64, error) {
	f.calls = append(f.calls, "promote")
	f.at = append(f.at, now)
	return f.promoted, nil
}

func TestSweepExpiresThenPromotes(t *testing.T) {
	store := &fakeStore{expired: 2, promoted: 1}
	lc := NewPackageLifecycle(store, zap.NewNop())
	fixed := time.Date(2025, 3, 2, 0, 0, 30, 0, time.FixedZone("ICT", 7*3600))
	lc.now = func() time.Time { return fixed }

	require.NoError(t, lc.Sweep(context.Background()))
	assert.Equal(t, []string{"expire", "promote"}, store.calls)
	for _, at := range store.at {
		assert.Equal(t, time.UTC, at.Location())
		assert.True(t, at.Equal(fixed))
	}
}

func TestSweepStopsOnExpireError(t *testing.T) {
	store := &fakeStore{expireErr: errors.New("db down")}
	lc := NewPackageLifecycle(store, zap.NewNop())

	assert.Error(t, lc.Sweep(context.Background()))
	assert.Equal(t, []string{"expire"}, store.calls)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	_, err := Start("every now and then", NewPackageLifecycle(&fakeStore{}, zap.NewNop()), zap.NewNop())
	assert.Error(t, err)
}

func TestStartSchedules(t *testing.T) {
	c, err := Start("@every 1h", NewPackageLifecycle(&fakeStore{}, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}
