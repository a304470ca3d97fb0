package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor pings the store at a fixed interval. Drivers reconnect on their own,
// so the monitor only tracks reachability and logs transitions.
type Monitor struct {
	store    Pinger
	interval time.Duration
	logger   *zap.Logger
	onChange func(healthy bool)

	healthy atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewMonitor(store Pinger, interval time.Duration, logger *zap.Logger, onChange func(healthy bool)) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		store:    store,
		interval: interval,
		logger:   logger,
		onChange: onChange,
	}
	m.healthy.Store(true)
	return m
}

// Start pings the store every interval until Stop is called.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Stop ends the ping loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Check pings the store once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	err := m.store.Ping(pingCtx)
	if ctx.Err() != nil {
		return m.Healthy()
	}
	healthy := err == nil

	if m.healthy.Swap(healthy) != healthy {
		if healthy {
			m.logger.Info("Store connection restored")
		} else {
			m.logger.Warn("Store connection lost", zap.Error(err))
		}
		if m.onChange != nil {
			m.onChange(healthy)
		}
	}

	return healthy
}

// Healthy returns the result of the last ping.
func (m *Monitor) Healthy() bool {
	return m.healthy.Load()
}
