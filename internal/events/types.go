package events

import "time"

// Event enumerates the topics emitted to passive observers.
type Event string

const (
	EventLog            Event = "log"
	EventPositionUpdate Event = "position_update"
	EventHistoryUpdate  Event = "history_update"
	EventSymbolUpdate   Event = "symbol_update"
)

// Envelope carries one published event with its payload.
type Envelope struct {
	Type Event     `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}
