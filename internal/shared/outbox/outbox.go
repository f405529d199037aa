package outbox

// Message is the outbox row persisted inside the same transaction (or
// critical section) as the state change it announces. The worker relay reads
// pending rows and publishes them on the broadcast bus.
type Message struct {
	ID         string
	EventType  string
	Payload    []byte
	Status     string // pending, published, failed
	RetryCount int
}
