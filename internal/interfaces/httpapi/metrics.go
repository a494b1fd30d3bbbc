package httpapi

import (
	"sync"
	"time"

	"txview/internal/application"
)

// Metrics counts fetch outcomes and page renders. It satisfies
// application.ViewObserver.
type Metrics struct {
	mu                sync.RWMutex
	startTime         time.Time
	fetchStarted      uint64
	fetchSucceeded    uint64
	fetchFailed       map[application.ErrorKind]uint64
	discardedUpdates  uint64
	lastFetchDuration time.Duration
	groups            int
	transactions      int
	renders           uint64
	renderErrs        uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime:   time.Now(),
		fetchFailed: make(map[application.ErrorKind]uint64),
	}
}

func (m *Metrics) OnFetchStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchStarted++
}

func (m *Metrics) OnFetchSucceeded(groups, transactions int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchSucceeded++
	m.groups = groups
	m.transactions = transactions
	m.lastFetchDuration = elapsed
}

func (m *Metrics) OnFetchFailed(kind application.ErrorKind, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchFailed[kind]++
	m.lastFetchDuration = elapsed
}

func (m *Metrics) OnUpdateDiscarded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardedUpdates++
}

func (m *Metrics) IncRender() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
}

func (m *Metrics) IncRenderErr() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderErrs++
}

type Snapshot struct {
	StartTime         time.Time
	FetchStarted      uint64
	FetchSucceeded    uint64
	FetchFailed       map[application.ErrorKind]uint64
	DiscardedUpdates  uint64
	LastFetchDuration time.Duration
	Groups            int
	Transactions      int
	Renders           uint64
	RenderErrs        uint64
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		StartTime:         m.startTime,
		FetchStarted:      m.fetchStarted,
		FetchSucceeded:    m.fetchSucceeded,
		FetchFailed:       copyFailureCounts(m.fetchFailed),
		DiscardedUpdates:  m.discardedUpdates,
		LastFetchDuration: m.lastFetchDuration,
		Groups:            m.groups,
		Transactions:      m.transactions,
		Renders:           m.renders,
		RenderErrs:        m.renderErrs,
	}
}

func copyFailureCounts(source map[application.ErrorKind]uint64) map[application.ErrorKind]uint64 {
	if len(source) == 0 {
		return nil
	}
	clone := make(map[application.ErrorKind]uint64, len(source))
	for kind, count := range source {
		clone[kind] = count
	}
	return clone
}
