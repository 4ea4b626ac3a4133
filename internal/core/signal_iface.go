package core

import "encoding/json"

// EventHandler receives the raw payload of one relay event.
type EventHandler func(data json.RawMessage)

// SignalChannel abstracts the long-lived connection to the signaling relay.
// It is pure transport: no chat or room state lives here.
// Owned by whoever constructs the controller; that owner must Close() it.
type SignalChannel interface {
	// Emit sends one event with a JSON-encodable payload to the relay.
	Emit(event string, payload any) error
	// On registers the handler for an event name. Registering again for the
	// same event replaces the previous handler, it never stacks, so a handler
	// can only ever fire once per delivered event.
	On(event string, h EventHandler)
	Close()
}
