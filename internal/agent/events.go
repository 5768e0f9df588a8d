package agent

// EventType tags the variants of a turn's event stream.
type EventType int

const (
	// EventToken carries one fragment of user-visible assistant text.
	EventToken EventType = iota
	// EventToolStart marks the agent entering a tool invocation.
	EventToolStart
	// EventToolEnd carries the tool's result text.
	EventToolEnd
	// EventError ends a failed turn; no further events follow.
	EventError
)

// Event is one element of the ordered event sequence the agent produces
// for a single turn. Consumers must preserve production order.
type Event struct {
	Type       EventType
	Token      string
	ToolResult string
	Err        error
}
