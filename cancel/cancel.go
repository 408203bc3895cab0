// Package cancel defines the cooperative cancellation handle threaded
// through every operator, data source scan, subquery and UDF call
// (spec §5 "Cancellation").
package cancel

// Handle is checked by every operator before each row emission. A signal
// lets a long-running query stop cleanly, with no partial row emitted
// and no error surfaced (spec §5, §7 "A cancelled query terminates
// cleanly with no error").
type Handle interface {
	// Cancelled reports whether cancellation has been requested.
	Cancelled() bool
}

// Signal is the mutable handle a caller holds and triggers; it also
// satisfies Handle so it can be passed straight into engine.ExecuteSQL.
type Signal struct {
	ch chan struct{}
}

// NewSignal returns a Signal in the not-cancelled state.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Cancel requests cancellation. Safe to call more than once.
func (s *Signal) Cancel() {
	select {
	case <-s.ch:
	default:
		close(s.ch)
	}
}

func (s *Signal) Cancelled() bool {
	if s == nil {
		return false
	}
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that closes when Cancel is called, for use in
// select statements alongside context.Context-based suspension points.
func (s *Signal) Done() <-chan struct{} { return s.ch }

// None is a Handle that never reports cancellation, used when the caller
// supplies no signal.
var None Handle = noneHandle{}

type noneHandle struct{}

func (noneHandle) Cancelled() bool { return false }
