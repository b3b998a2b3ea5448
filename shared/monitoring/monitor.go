package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks the outcome of pipeline and reconciler runs for the health
// endpoints. Partial failures are logged but do not flip health; only a
// critical failure marks the service unhealthy until the next good run.
type Monitor struct {
	mu             sync.Mutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	totalRuns      int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.totalRuns++
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Partial failures leave health alone
	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.totalRuns++
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}
	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s (%s, %d runs total)",
			m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary, m.totalRuns)
	}
	return fmt.Sprintf("❌ Last run failed: %s (%s)",
		m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
}
