package retrieval

import "github.com/Ajay-Krishna00/CosmoGraph/core"

// Monitor provides hooks to observe a retrieval.
// Implement this interface to trace state transitions during a query.
type Monitor interface {
	Start(dimension, topK int)
	PrimaryFailed(err error)
	PrimaryEmpty()
	FallbackStarted(rows int)
	RowSkipped(id core.ID, reason error)
	Finish(state State, items []core.RetrievedItem)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ int)                         {}
func (n *noopMonitor) PrimaryFailed(_ error)                  {}
func (n *noopMonitor) PrimaryEmpty()                          {}
func (n *noopMonitor) FallbackStarted(_ int)                  {}
func (n *noopMonitor) RowSkipped(_ core.ID, _ error)          {}
func (n *noopMonitor) Finish(_ State, _ []core.RetrievedItem) {}
