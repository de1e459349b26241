// Package notifier pushes events to connected clients. Delivery is
// best-effort by design: a failed push is dropped, never retried and never
// fatal to the core.
package notifier

// Event is one push message to a client.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"data,omitempty"`
}

// Well-known event types emitted by the core.
const (
	EventTick           = "tick"
	EventContractClosed = "contract_closed"
	EventBotLog         = "bot_log"
)

// Notifier is the interface for pushing events to clients.
type Notifier interface {
	// Push delivers an event to one user's clients, if any are connected.
	Push(userID string, event Event)
	// Broadcast delivers an event to every connected client.
	Broadcast(event Event)
	Close() error
}

// NoOpNotifier is a notifier that does nothing. It is used when no client
// push surface is wired.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Push does nothing.
func (n *NoOpNotifier) Push(userID string, event Event) {}

// Broadcast does nothing.
func (n *NoOpNotifier) Broadcast(event Event) {}

// Close does nothing and returns nil.
func (n *NoOpNotifier) Close() error {
	return nil
}
