package dab

import "github.com/nerrad567/dab-broker/internal/jsonvalue"

// HandlerFunc is a single operation's entry point: it receives the parsed
// request payload and returns a reply value, or an error (an *Exception to
// control status/text precisely, or any other error for a generic 500).
type HandlerFunc func(payload jsonvalue.Value) (jsonvalue.Value, error)

// Publisher is the async publish callback the Registry hands to every
// instance so a handler can emit unsolicited telemetry at any time,
// mirroring the source's setPublishCallback. topic is a full
// dab/<deviceId>/<op> or dab/discovery style topic; payload is serialized
// and published exactly as a reply would be.
type Publisher func(topic string, payload jsonvalue.Value)

// Implementation is the adapter contract every device class implements
// once. A concrete device adapter package (internal/adapter/...)
// implements this once per device class; the Registry constructs one
// Instance per deviceId from whichever Implementation's IsCompatible
// probe succeeds first.
type Implementation interface {
	// IsCompatible probes deviceAddress with no side effects other than a
	// short probing RPC, and reports whether this implementation can
	// front that device.
	IsCompatible(deviceAddress string) bool

	// New constructs a bound Instance for deviceId/deviceAddress. Called
	// at most once per deviceId, after IsCompatible has already returned
	// true for the same address.
	New(deviceID, deviceAddress string) Instance
}

// Instance is a constructed, device-bound handler object. Handlers returns
// the handler table the Introspector uses both to answer the operations
// request and to decide which topics the Registry subscribes to.
// SetPublisher is called at most once by the Registry, when its publish
// callback is set (at construction if the callback is already set, or
// later from SetPublishCallback), so requests may be dispatched before it
// arrives; an Instance that never emits unsolicited messages may ignore
// the call.
type Instance interface {
	Handlers() map[Operation]HandlerFunc
	SetPublisher(pub Publisher)
}
