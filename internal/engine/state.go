package engine

// Status is the discrete lifecycle status of one workspace's engine session.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusScanning Status = "scanning"
	StatusWatching Status = "watching"
	StatusError    Status = "error"
)

// State is the lifecycle snapshot emitted to callers via OnState and
// returned from Engine.State.
type State struct {
	Status          Status
	Message         string
	GitBranch       string
	TotalFiles      int
	TotalChunks     int
	LastSyncEpochMS int64
	Err             error
}

// OnState receives lifecycle transitions from Start. Implementations must
// not block for long; Engine invokes it synchronously on the scan/watch
// goroutine.
type OnState func(State)

// NoOpOnState discards every state transition, for callers that don't need
// progress reporting.
func NoOpOnState(State) {}
