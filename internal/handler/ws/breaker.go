package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"
)

// newWriteBreaker builds a per-connection circuit breaker around the socket
// write path (SPEC_FULL.md section 4.3): three consecutive write failures
// trip it, short-circuiting further writes. writePump already stops at the
// first failed write, so within one connection the breaker sees at most one
// failure; the close frame written during cleanup does not go through it.
func newWriteBreaker(name string) *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// writeFrame performs one guarded write through breaker. A tripped breaker
// surfaces as gobreaker.ErrOpenState, which the caller treats the same as
// any other write failure: proceed straight to cleanup.
func writeFrame(breaker *gobreaker.CircuitBreaker[struct{}], conn *websocket.Conn, messageType int, payload []byte) error {
	_, err := breaker.Execute(func() (struct{}, error) {
		return struct{}{}, conn.WriteMessage(messageType, payload)
	})
	return err
}
