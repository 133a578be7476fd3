package eventbus

import "time"

// Topic represents an event topic.
type Topic string

const (
	TopicRunStart    Topic = "run_start"
	TopicAgentAction Topic = "agent_action"
	TopicToolResult  Topic = "tool_result"
	TopicAgentFinish Topic = "agent_finish"
	TopicAgentStop   Topic = "agent_stop"
	TopicParseError  Topic = "parse_error"
	TopicError       Topic = "error"
)

// Event is a message passed through the event bus.
type Event struct {
	Topic     Topic
	RunID     string
	Payload   any
	Timestamp time.Time
}

// Handler processes an event.
type Handler func(Event)
