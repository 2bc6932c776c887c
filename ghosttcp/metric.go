package ghosttcp

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// SessionMetrics contains atomic metrics for a session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// RequestCount indicates the number of request commands sent.
	RequestCount atomic.Uint64
	// FireAndForgetCount indicates the number of fire-and-forget commands sent.
	FireAndForgetCount atomic.Uint64
	// ReplyCount indicates the number of complete replies received.
	ReplyCount atomic.Uint64
	// ReplyTimeoutCount indicates the number of reply line timeouts.
	ReplyTimeoutCount atomic.Uint64
	// ReplyLineCount indicates the number of reply lines received.
	ReplyLineCount atomic.Uint64
	// ConnectCount indicates the number of successful connects.
	ConnectCount atomic.Uint64

	// verbCount counts sent commands per verb, e.g. "START" or "STATUS".
	// It is read concurrently by observers while exchanges are in flight.
	verbCount *xsync.MapOf[string, *atomic.Uint64]
}

func newSessionMetrics() *SessionMetrics {
	return &SessionMetrics{
		verbCount: xsync.NewMapOf[string, *atomic.Uint64](),
	}
}

// VerbCount returns the number of commands sent with the given verb.
func (m *SessionMetrics) VerbCount(verb string) uint64 {
	counter, ok := m.verbCount.Load(verb)
	if !ok {
		return 0
	}
	return counter.Load()
}

// VerbCounts returns a snapshot of all per-verb send counters.
func (m *SessionMetrics) VerbCounts() map[string]uint64 {
	snapshot := make(map[string]uint64)
	m.verbCount.Range(func(verb string, counter *atomic.Uint64) bool {
		snapshot[verb] = counter.Load()
		return true
	})

	return snapshot
}

func (m *SessionMetrics) incRequestCount() {
	m.RequestCount.Add(1)
}

func (m *SessionMetrics) incFireAndForgetCount() {
	m.FireAndForgetCount.Add(1)
}

func (m *SessionMetrics) incReplyCount() {
	m.ReplyCount.Add(1)
}

func (m *SessionMetrics) incReplyTimeoutCount() {
	m.ReplyTimeoutCount.Add(1)
}

func (m *SessionMetrics) incReplyLineCount() {
	m.ReplyLineCount.Add(1)
}

func (m *SessionMetrics) incConnectCount() {
	m.ConnectCount.Add(1)
}

func (m *SessionMetrics) incVerbCount(verb string) {
	counter, _ := m.verbCount.LoadOrCompute(verb, func() *atomic.Uint64 {
		return &atomic.Uint64{}
	})
	counter.Add(1)
}
