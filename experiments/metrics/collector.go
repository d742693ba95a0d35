package metrics

import (
	"sync/atomic"
	"time"

	"nimfibo/kernel"
)

type SearchMetric struct {
	Goroutines int
	Duration   time.Duration
	Nodes      int // states whose status was computed
	Failures   int
	Vacuous    int // states closed by a cut
	Solutions  int
	TimedOut   bool
}

type Collector interface {
	Start(goroutines int)
	AddNode(status kernel.Status)
	SetTimedOut(value bool)
	Complete() SearchMetric
}

type collector struct {
	goroutines int
	startTime  time.Time
	nodes      atomic.Int64
	failures   atomic.Int64
	vacuous    atomic.Int64
	solutions  atomic.Int64
	timedOut   atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
}

func (m *collector) AddNode(status kernel.Status) {
	m.nodes.Add(1)
	switch status {
	case kernel.Failed:
		m.failures.Add(1)
	case kernel.SolvedVacuously:
		m.vacuous.Add(1)
	case kernel.Solved:
		m.solutions.Add(1)
	}
}

func (m *collector) SetTimedOut(value bool) {
	m.timedOut.Store(value)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines: m.goroutines,
		Duration:   time.Since(m.startTime),
		Nodes:      int(m.nodes.Load()),
		Failures:   int(m.failures.Load()),
		Vacuous:    int(m.vacuous.Load()),
		Solutions:  int(m.solutions.Load()),
		TimedOut:   m.timedOut.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int)         {}
func (m *dummyCollector) AddNode(status kernel.Status) {}
func (m *dummyCollector) SetTimedOut(value bool)       {}
func (m *dummyCollector) Complete() SearchMetric       { return SearchMetric{} }
