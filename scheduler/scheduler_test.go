package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvery_Fires(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.Every("tick", 20*time.Millisecond, func() { atomic.AddInt32(&count, 1) })

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestEvery_ReplaceStopsOld(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var old, cur int32
	s.Every("task", 20*time.Millisecond, func() { atomic.AddInt32(&old, 1) })
	time.Sleep(30 * time.Millisecond)
	s.Every("task", 20*time.Millisecond, func() { atomic.AddInt32(&cur, 1) })
	time.Sleep(80 * time.Millisecond)

	snap := atomic.LoadInt32(&old)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&old), "replaced task must stop")
	assert.Positive(t, atomic.LoadInt32(&cur))
}

func TestAfter_FiresOnce(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.After("once", 30*time.Millisecond, func() { atomic.AddInt32(&count, 1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestAfter_ReplaceCancelsOld(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.After("d", 500*time.Millisecond, func() { atomic.AddInt32(&count, 1) })
	s.After("d", 30*time.Millisecond, func() { atomic.AddInt32(&count, 10) })
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
}

func TestCancel(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var ticks, shots int32
	s.Every("p", 20*time.Millisecond, func() { atomic.AddInt32(&ticks, 1) })
	s.After("o", 100*time.Millisecond, func() { atomic.AddInt32(&shots, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Cancel("p")
	s.Cancel("o")
	s.Cancel("nonexistent")

	snap := atomic.LoadInt32(&ticks)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&ticks))
	assert.Equal(t, int32(0), atomic.LoadInt32(&shots))
}

func TestStop_HaltsAll(t *testing.T) {
	s := New(zap.NewNop())

	var c1, c2 int32
	s.Every("a", 20*time.Millisecond, func() { atomic.AddInt32(&c1, 1) })
	s.Every("b", 20*time.Millisecond, func() { atomic.AddInt32(&c2, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop() // idempotent

	time.Sleep(30 * time.Millisecond)
	snap1, snap2 := atomic.LoadInt32(&c1), atomic.LoadInt32(&c2)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&c1))
	assert.Equal(t, snap2, atomic.LoadInt32(&c2))
}

func TestNames(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	require.Empty(t, s.Names())
	s.Every("alpha", time.Hour, func() {})
	s.Every("beta", time.Hour, func() {})
	assert.ElementsMatch(t, []string{"alpha", "beta"}, s.Names())

	s.Cancel("alpha")
	assert.Equal(t, []string{"beta"}, s.Names())
}

func TestEvery_PanicDoesNotKillTicker(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.Every("panicky", 20*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
		panic("boom")
	})
	time.Sleep(100 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(2), "ticker must survive panics")
}
