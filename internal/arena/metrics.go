package arena

// Metrics is notified about arena and bola lifecycle events. It is purely observational.
// Implementations must be safe for concurrent use, since every arena runs on its own goroutine.
type Metrics interface {
	ArenaCreated()
	ArenaClosed()
	BolaAdded()
	BolasRemoved(n int)
	CollisionsResolved(n int)
}

type nopMetrics struct{}

func (nopMetrics) ArenaCreated()          {}
func (nopMetrics) ArenaClosed()           {}
func (nopMetrics) BolaAdded()             {}
func (nopMetrics) BolasRemoved(int)       {}
func (nopMetrics) CollisionsResolved(int) {}
