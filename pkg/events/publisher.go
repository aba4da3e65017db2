package events

// EventType represents the type of event
type EventType string

// Define event types
const (
	EventSessionCreated   EventType = "SESSION_CREATED"
	EventGameStarted      EventType = "GAME_STARTED"
	EventGameEnded        EventType = "GAME_ENDED"
	EventSessionRemoved   EventType = "SESSION_REMOVED"
	EventConnectionClosed EventType = "CONNECTION_CLOSED"
)

// Event represents an event in the system
type Event struct {
	Type      EventType
	SessionID string // Optional, empty for non-session events
	Payload   interface{}
}

// Handler is a function that processes events
type Handler func(event Event)

// Publisher is the central event publisher. Handlers run synchronously on
// the publishing goroutine so events observe the order they were emitted in.
type Publisher struct {
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (p *Publisher) SubscribeAll(handler Handler) {
	p.subscribers["*"] = append(p.subscribers["*"], handler)
}

// Publish delivers an event to its subscribers and to "all events" handlers.
func (p *Publisher) Publish(event Event) {
	for _, handler := range p.subscribers[event.Type] {
		handler(event)
	}
	for _, handler := range p.subscribers["*"] {
		handler(event)
	}
}
