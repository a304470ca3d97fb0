package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SergeiKhy/golink/internal/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePinger struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestMonitor_ReportsTransitions(t *testing.T) {
	pinger := &fakePinger{}

	var mu sync.Mutex
	var changes []bool
	monitor := repository.NewMonitor(pinger, time.Second, zap.NewNop(), func(healthy bool) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, healthy)
	})
	ctx := context.Background()

	assert.True(t, monitor.Check(ctx))

	pinger.down.Store(true)
	assert.False(t, monitor.Check(ctx))
	assert.False(t, monitor.Check(ctx))
	assert.False(t, monitor.Healthy())

	pinger.down.Store(false)
	assert.True(t, monitor.Check(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{false, true}, changes)
}

func TestMonitor_PingsAtInterval(t *testing.T) {
	pinger := &fakePinger{}
	monitor := repository.NewMonitor(pinger, 10*time.Millisecond, nil, nil)

	monitor.Start()
	assert.Eventually(t, func() bool { return pinger.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	pinger.down.Store(true)
	assert.Eventually(t, func() bool { return !monitor.Healthy() }, time.Second, 5*time.Millisecond)

	monitor.Stop()
	calls := pinger.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, pinger.calls.Load())
}
