package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"FoodieHub/cart"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRegistry(idle time.Duration) (*Registry, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(idle, quietLogger())
	r.now = func() time.Time { return now }
	return r, &now
}

func TestStart_CreatesEmptyCartPerSession(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(time.Minute)
	a := r.Start()
	b := r.Start()

	require.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Cart, b.Cart)
	assert.True(t, a.Cart.Snapshot().IsEmpty())
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(time.Minute)
	got, ok := r.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestEnd_ClearsCartAndDelivery(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(time.Minute)
	s := r.Start()
	s.Cart.AddItem(cart.Candidate{ID: "1", Name: "Burger", Price: decimal.RequireFromString("12.99")})
	s.SetDelivery(Delivery{Name: "Ann", Address: "1 Main St", Phone: "555"})

	r.End(s.ID)
	r.End(s.ID)

	_, ok := r.Get(s.ID)
	assert.False(t, ok)
	assert.True(t, s.Cart.Snapshot().IsEmpty())
	_, ok = s.Delivery()
	assert.False(t, ok)
}

func TestSweep_RemovesOnlyIdleSessions(t *testing.T) {
	t.Parallel()

	r, now := newTestRegistry(10 * time.Minute)
	idle := r.Start()
	idle.Cart.AddItem(cart.Candidate{ID: "1", Name: "Fries", Price: decimal.RequireFromString("3.50")})

	*now = now.Add(6 * time.Minute)
	active := r.Start()

	*now = now.Add(5 * time.Minute)
	_, ok := r.Get(active.ID)
	require.True(t, ok)

	removed := r.Sweep(*now)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, r.Len())
	assert.True(t, idle.Cart.Snapshot().IsEmpty())

	_, ok = r.Get(idle.ID)
	assert.False(t, ok)
}

func TestSweep_DisabledWithoutTimeout(t *testing.T) {
	t.Parallel()

	r, now := newTestRegistry(0)
	r.Start()
	assert.Equal(t, 0, r.Sweep(now.Add(24*time.Hour)))
	assert.Equal(t, 1, r.Len())
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Minute, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDelivery_SetAndClear(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(time.Minute)
	s := r.Start()

	_, ok := s.Delivery()
	assert.False(t, ok)

	s.SetDelivery(Delivery{Name: "Bo", Address: "2 Side St", Phone: "123"})
	d, ok := s.Delivery()
	require.True(t, ok)
	assert.Equal(t, "2 Side St", d.Address)

	s.ClearDelivery()
	_, ok = s.Delivery()
	assert.False(t, ok)
}

func TestBeginOrder_IsExclusive(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(time.Minute)
	s := r.Start()

	require.True(t, s.BeginOrder())
	assert.False(t, s.BeginOrder())
	s.EndOrder()
	assert.True(t, s.BeginOrder())
	s.EndOrder()
}

func TestGet_RacingSweepNeverReturnsExpiredSession(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		r, now := newTestRegistry(time.Minute)
		s := r.Start()
		s.Cart.AddItem(cart.Candidate{ID: "1", Name: "Burger", Price: decimal.RequireFromString("12.99")})
		*now = now.Add(2 * time.Minute)
		sweepAt := *now

		var (
			wg  sync.WaitGroup
			got bool
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, got = r.Get(s.ID)
		}()
		go func() {
			defer wg.Done()
			r.Sweep(sweepAt)
		}()
		wg.Wait()

		if got {
			// 取得成功代表已更新使用時間，Sweep不得再清除
			require.Equal(t, 1, r.Len())
			require.False(t, s.Cart.Snapshot().IsEmpty())
		} else {
			require.Equal(t, 0, r.Len())
		}
	}
}
